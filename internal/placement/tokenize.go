// Package placement anchors scenes to sentences of their story text and
// lets users move those anchors without breaking the scene order.
package placement

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentence is a byte range [Start, End) of the story text with surrounding
// whitespace trimmed.
type Sentence struct {
	Index     int `json:"index"`
	Paragraph int `json:"paragraph"`
	Start     int `json:"start"`
	End       int `json:"end"`
}

// Paragraph is a run of non-blank lines. Its sentences are
// Sentences[First:Last].
type Paragraph struct {
	Index int `json:"index"`
	Start int `json:"start"`
	End   int `json:"end"`
	First int `json:"first"`
	Last  int `json:"last"`
}

type Document struct {
	Text       string
	Paragraphs []Paragraph
	Sentences  []Sentence
}

// Tokenize splits text into paragraphs on blank lines and each paragraph
// into sentences. A sentence ends after '.', '!', '?' or '…', plus any
// closing quotes or brackets, when followed by whitespace or the end of
// the paragraph.
func Tokenize(text string) *Document {
	doc := &Document{Text: text}

	for _, span := range paragraphSpans(text) {
		p := Paragraph{
			Index: len(doc.Paragraphs),
			Start: span[0],
			End:   span[1],
			First: len(doc.Sentences),
		}

		for _, s := range sentenceSpans(text, span[0], span[1]) {
			doc.Sentences = append(doc.Sentences, Sentence{
				Index:     len(doc.Sentences),
				Paragraph: p.Index,
				Start:     s[0],
				End:       s[1],
			})
		}

		p.Last = len(doc.Sentences)
		doc.Paragraphs = append(doc.Paragraphs, p)
	}

	return doc
}

// paragraphSpans returns the trimmed byte ranges of runs of non-blank lines.
func paragraphSpans(text string) [][2]int {
	var spans [][2]int
	start := -1
	end := 0

	for off := 0; off < len(text); {
		nl := strings.IndexByte(text[off:], '\n')
		lineEnd := len(text)
		if nl >= 0 {
			lineEnd = off + nl
		}

		line := text[off:lineEnd]
		if strings.TrimSpace(line) == "" {
			if start >= 0 {
				spans = append(spans, [2]int{start, end})
				start = -1
			}
		} else {
			lead := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
			if start < 0 {
				start = off + lead
			}
			end = off + len(strings.TrimRightFunc(line, unicode.IsSpace))
		}

		off = lineEnd + 1
	}

	if start >= 0 {
		spans = append(spans, [2]int{start, end})
	}
	return spans
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’', '»':
		return true
	}
	return false
}

// sentenceSpans splits text[from:to], which starts and ends on non-space
// characters.
func sentenceSpans(text string, from, to int) [][2]int {
	var spans [][2]int
	start := from

	for i := from; i < to; {
		r, size := utf8.DecodeRuneInString(text[i:to])
		if !isTerminator(r) {
			i += size
			continue
		}

		end := i + size
		for end < to {
			next, n := utf8.DecodeRuneInString(text[end:to])
			if !isTerminator(next) && !isCloser(next) {
				break
			}
			end += n
		}

		if end == to {
			break
		}

		next, _ := utf8.DecodeRuneInString(text[end:to])
		if !unicode.IsSpace(next) {
			i = end
			continue
		}

		spans = append(spans, [2]int{start, end})

		i = end
		for i < to {
			ws, n := utf8.DecodeRuneInString(text[i:to])
			if !unicode.IsSpace(ws) {
				break
			}
			i += n
		}
		start = i
	}

	if start < to {
		spans = append(spans, [2]int{start, to})
	}
	return spans
}

// SentenceAt returns the index of the sentence nearest to the byte offset.
// Offsets inside a sentence map to it, offsets before the first or after
// the last sentence are clamped, and offsets in the whitespace between two
// sentences go to the closer one, the earlier on a tie. It returns -1 when
// the document has no sentences.
func (d *Document) SentenceAt(offset int) int {
	n := len(d.Sentences)
	if n == 0 {
		return -1
	}

	// last sentence starting at or before offset
	i := sort.Search(n, func(i int) bool { return d.Sentences[i].Start > offset }) - 1
	if i < 0 {
		return 0
	}

	if offset < d.Sentences[i].End || i == n-1 {
		return i
	}

	before := offset - d.Sentences[i].End
	after := d.Sentences[i+1].Start - offset
	if after < before {
		return i + 1
	}
	return i
}

// SentenceText returns the text of sentence i.
func (d *Document) SentenceText(i int) string {
	s := d.Sentences[i]
	return d.Text[s.Start:s.End]
}

func (d *Document) Len() int {
	return len(d.Sentences)
}
