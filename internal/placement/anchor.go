package placement

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownScene  = errors.New("placement: unknown scene")
	ErrSentenceRange = errors.New("placement: sentence out of range")
	ErrContinuity    = errors.New("placement: move breaks scene order")
)

// SceneRef is what placement needs to know about a scene.
type SceneRef struct {
	ID     string
	Number int
	// Start is the byte offset of the scene's text in the story.
	Start int
}

type Anchor struct {
	SceneID  string `json:"scene_id"`
	Number   int    `json:"number"`
	Sentence int    `json:"sentence"`
}

// AnchorMap holds one anchor per scene ordered by scene number.
type AnchorMap []Anchor

// MapScenes anchors every scene at the sentence nearest to its start.
func MapScenes(doc *Document, scenes []SceneRef) AnchorMap {
	anchors := make(AnchorMap, 0, len(scenes))
	for _, s := range scenes {
		anchors = append(anchors, Anchor{
			SceneID:  s.ID,
			Number:   s.Number,
			Sentence: max(doc.SentenceAt(s.Start), 0),
		})
	}
	anchors.sort()
	return anchors
}

func (m AnchorMap) sort() {
	slices.SortStableFunc(m, func(a, b Anchor) int { return a.Number - b.Number })
}

func (m AnchorMap) Clone() AnchorMap {
	return slices.Clone(m)
}

func (m AnchorMap) indexOf(sceneID string) int {
	return slices.IndexFunc(m, func(a Anchor) bool { return a.SceneID == sceneID })
}

// Sentence returns the sentence the scene is anchored at.
func (m AnchorMap) Sentence(sceneID string) (int, bool) {
	i := m.indexOf(sceneID)
	if i < 0 {
		return 0, false
	}
	return m[i].Sentence, true
}

// ContinuityError reports the scene whose anchor a move would cross.
type ContinuityError struct {
	SceneID  string
	Number   int
	Sentence int
	Conflict Anchor
}

func (e *ContinuityError) Error() string {
	return fmt.Sprintf("placement: scene %d cannot move to sentence %d, scene %d is anchored at sentence %d",
		e.Number, e.Sentence, e.Conflict.Number, e.Conflict.Sentence)
}

func (e *ContinuityError) Unwrap() error {
	return ErrContinuity
}

// ValidateMove checks that anchoring sceneID at sentence keeps every
// lower-numbered scene at or before it and every higher-numbered scene at
// or after it.
func ValidateMove(doc *Document, anchors AnchorMap, sceneID string, sentence int) error {
	i := anchors.indexOf(sceneID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownScene, sceneID)
	}

	if sentence < 0 || sentence >= doc.Len() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSentenceRange, sentence, doc.Len())
	}

	moving := anchors[i]
	conflict := func(other Anchor) error {
		return &ContinuityError{
			SceneID:  moving.SceneID,
			Number:   moving.Number,
			Sentence: sentence,
			Conflict: other,
		}
	}

	// nearest neighbours first so the reported conflict is the closest one
	for j := i - 1; j >= 0; j-- {
		if other := anchors[j]; other.Number < moving.Number && other.Sentence > sentence {
			return conflict(other)
		}
	}
	for j := i + 1; j < len(anchors); j++ {
		if other := anchors[j]; other.Number > moving.Number && other.Sentence < sentence {
			return conflict(other)
		}
	}

	return nil
}

// Move returns a copy of anchors with sceneID anchored at sentence, or the
// ValidateMove error.
func (m AnchorMap) Move(doc *Document, sceneID string, sentence int) (AnchorMap, error) {
	if err := ValidateMove(doc, m, sceneID, sentence); err != nil {
		return nil, err
	}

	next := m.Clone()
	next[next.indexOf(sceneID)].Sentence = sentence
	return next, nil
}
