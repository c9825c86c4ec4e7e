package placement_test

import (
	"reflect"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/placement"
)

func sentenceTexts(doc *placement.Document) []string {
	texts := make([]string, 0, doc.Len())
	for i := range doc.Sentences {
		texts = append(texts, doc.SentenceText(i))
	}
	return texts
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		text           string
		wantParagraphs int
		wantSentences  []string
	}{
		{
			name:           "empty text",
			text:           "",
			wantParagraphs: 0,
			wantSentences:  []string{},
		},
		{
			name:           "whitespace only",
			text:           " \n\n\t\n",
			wantParagraphs: 0,
			wantSentences:  []string{},
		},
		{
			name:           "single paragraph",
			text:           "The lamp went out. Nobody moved! Was she gone?",
			wantParagraphs: 1,
			wantSentences:  []string{"The lamp went out.", "Nobody moved!", "Was she gone?"},
		},
		{
			name:           "paragraphs split on blank lines",
			text:           "  First one.\nStill first.\n\n\nSecond one.  \n",
			wantParagraphs: 2,
			wantSentences:  []string{"First one.", "Still first.", "Second one."},
		},
		{
			name:           "closing quotes stay with the sentence",
			text:           `He said "Run!" Then he ran.`,
			wantParagraphs: 1,
			wantSentences:  []string{`He said "Run!"`, "Then he ran."},
		},
		{
			name:           "ellipsis and repeated terminators",
			text:           "Wait… Really?! Yes...",
			wantParagraphs: 1,
			wantSentences:  []string{"Wait…", "Really?!", "Yes..."},
		},
		{
			name:           "terminator without trailing space does not split",
			text:           "Version 2.0 shipped. Done",
			wantParagraphs: 1,
			wantSentences:  []string{"Version 2.0 shipped.", "Done"},
		},
		{
			name:           "crlf paragraphs",
			text:           "One.\r\n\r\nTwo.",
			wantParagraphs: 2,
			wantSentences:  []string{"One.", "Two."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := placement.Tokenize(tt.text)

			if got := len(doc.Paragraphs); got != tt.wantParagraphs {
				t.Errorf("len(doc.Paragraphs) = %d, want: %d", got, tt.wantParagraphs)
			}

			if got := sentenceTexts(doc); !reflect.DeepEqual(got, tt.wantSentences) {
				t.Errorf("sentences = %q, want: %q", got, tt.wantSentences)
			}

			for i, s := range doc.Sentences {
				if s.Index != i {
					t.Errorf("doc.Sentences[%d].Index = %d", i, s.Index)
				}
				p := doc.Paragraphs[s.Paragraph]
				if i < p.First || i >= p.Last {
					t.Errorf("sentence %d not in paragraph range [%d, %d)", i, p.First, p.Last)
				}
			}
		})
	}
}

func TestDocument_SentenceAt(t *testing.T) {
	t.Parallel()

	// sentences: [0,4) "Aaa." [8,12) "Bbb." [13,17) "Ccc."
	doc := placement.Tokenize("Aaa.    Bbb. Ccc.")

	tests := []struct {
		name   string
		offset int
		want   int
	}{
		{"before the first sentence", -5, 0},
		{"start of the first sentence", 0, 0},
		{"inside a sentence", 10, 1},
		{"gap closer to the earlier sentence", 5, 0},
		{"gap closer to the later sentence", 7, 1},
		{"gap tie goes to the earlier sentence", 6, 0},
		{"end of the last sentence", 17, 2},
		{"past the end", 100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := doc.SentenceAt(tt.offset); got != tt.want {
				t.Errorf("doc.SentenceAt(%d) = %d, want: %d", tt.offset, got, tt.want)
			}
		})
	}
}

func TestDocument_SentenceAtEmpty(t *testing.T) {
	t.Parallel()

	if got := placement.Tokenize("").SentenceAt(3); got != -1 {
		t.Errorf("SentenceAt() = %d, want: -1", got)
	}
}
