package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ferdiebergado/storyboard/internal/placement"
	"github.com/ferdiebergado/storyboard/internal/platform/functions"
	"github.com/xeipuuv/gojsonschema"
)

var ErrBadSegmentation = errors.New("story: invalid segmentation")

const (
	FuncSegmentStory = "segment-story"

	MethodRemote     = "remote"
	MethodParagraphs = "paragraphs"
)

// Segment is one scene proposed by a segmenter. Start and End are byte
// offsets into the normalized story body.
type Segment struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Prompt     string   `json:"prompt"`
	Characters []string `json:"characters"`
}

type CastMember struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Segmentation struct {
	Method     string       `json:"-"`
	Scenes     []Segment    `json:"scenes"`
	Characters []CastMember `json:"characters"`
}

type Segmenter interface {
	Segment(ctx context.Context, title string, doc *placement.Document) (*Segmentation, error)
}

const segmentationSchema = `{
  "type": "object",
  "required": ["scenes"],
  "properties": {
    "scenes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "start", "end"],
        "properties": {
          "title": {"type": "string"},
          "summary": {"type": "string"},
          "start": {"type": "integer", "minimum": 0},
          "end": {"type": "integer", "minimum": 0},
          "prompt": {"type": "string"},
          "characters": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "characters": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

// RemoteSegmenter asks the segment-story function to split a story into
// scenes and validates the answer before trusting its offsets.
type RemoteSegmenter struct {
	invoker functions.Invoker
	schema  *gojsonschema.Schema
}

func NewRemoteSegmenter(invoker functions.Invoker) (*RemoteSegmenter, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(segmentationSchema))
	if err != nil {
		return nil, fmt.Errorf("compile segmentation schema: %w", err)
	}
	return &RemoteSegmenter{invoker: invoker, schema: schema}, nil
}

type segmentRequest struct {
	Title     string               `json:"title"`
	Text      string               `json:"text"`
	Sentences []placement.Sentence `json:"sentences"`
}

func (s *RemoteSegmenter) Segment(ctx context.Context, title string, doc *placement.Document) (*Segmentation, error) {
	req := segmentRequest{Title: title, Text: doc.Text, Sentences: doc.Sentences}

	var raw json.RawMessage
	if err := s.invoker.Invoke(ctx, FuncSegmentStory, req, &raw); err != nil {
		return nil, fmt.Errorf("segment story: %w", err)
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSegmentation, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrBadSegmentation, strings.Join(msgs, "; "))
	}

	var seg Segmentation
	if err := json.Unmarshal(raw, &seg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSegmentation, err)
	}

	if err := checkOffsets(seg.Scenes, len(doc.Text)); err != nil {
		return nil, err
	}

	seg.Method = MethodRemote
	return &seg, nil
}

// checkOffsets requires every segment to lie inside the text and segments
// to start in non-decreasing order.
func checkOffsets(scenes []Segment, textLen int) error {
	prev := 0
	for i, sc := range scenes {
		if sc.Start > sc.End || sc.End > textLen {
			return fmt.Errorf("%w: scene %d spans [%d, %d) outside text of length %d", ErrBadSegmentation, i+1, sc.Start, sc.End, textLen)
		}
		if sc.Start < prev {
			return fmt.Errorf("%w: scene %d starts before scene %d", ErrBadSegmentation, i+1, i)
		}
		prev = sc.Start
	}
	return nil
}

// ParagraphSegmenter groups whole paragraphs into scenes of at most
// MaxSentences sentences. A longer paragraph is split on sentence
// boundaries.
type ParagraphSegmenter struct {
	MaxSentences int
}

func (s ParagraphSegmenter) Segment(_ context.Context, _ string, doc *placement.Document) (*Segmentation, error) {
	limit := max(s.MaxSentences, 1)

	var (
		scenes     []Segment
		first      = -1
		last       = -1
		groupCount = 0
	)
	flush := func() {
		if first < 0 {
			return
		}
		start, end := doc.Sentences[first].Start, doc.Sentences[last].End
		summary := doc.SentenceText(first)
		scenes = append(scenes, Segment{
			Title:   fmt.Sprintf("Scene %d", len(scenes)+1),
			Summary: summary,
			Start:   start,
			End:     end,
			Prompt:  doc.Text[start:end],
		})
		first, last, groupCount = -1, -1, 0
	}

	for _, p := range doc.Paragraphs {
		n := p.Last - p.First
		if groupCount > 0 && groupCount+n > limit {
			flush()
		}
		for i := p.First; i < p.Last; i++ {
			if groupCount == limit {
				flush()
			}
			if first < 0 {
				first = i
			}
			last = i
			groupCount++
		}
	}
	flush()

	return &Segmentation{Method: MethodParagraphs, Scenes: scenes}, nil
}

// FallbackSegmenter uses Primary and falls back to Secondary when Primary
// fails for any reason other than the caller giving up.
type FallbackSegmenter struct {
	Primary   Segmenter
	Secondary Segmenter
}

func (s FallbackSegmenter) Segment(ctx context.Context, title string, doc *placement.Document) (*Segmentation, error) {
	seg, err := s.Primary.Segment(ctx, title, doc)
	if err == nil {
		return seg, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	slog.Warn("remote segmentation failed, splitting on paragraphs", "reason", err)
	return s.Secondary.Segment(ctx, title, doc)
}
