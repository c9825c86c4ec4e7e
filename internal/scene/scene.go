// Package scene manages the ordered scenes of a story.
package scene

import "github.com/ferdiebergado/storyboard/internal/model"

type Scene struct {
	model.Model
	StoryID string
	// OwnerID is the user who owns the scene's story.
	OwnerID        string
	Number         int
	Title          string
	Summary        string
	Start          int
	End            int
	Prompt         string
	ImageURL       string
	Characters     []string
	AnchorSentence *int
}

// HasCharacter reports whether name appears in the scene.
func (s *Scene) HasCharacter(name string) bool {
	for _, c := range s.Characters {
		if c == name {
			return true
		}
	}
	return false
}
