// Package character tracks the cast of a story and how each character
// looks as the story progresses.
package character

import "github.com/ferdiebergado/storyboard/internal/model"

type AppearanceState struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	FromScene   int    `json:"from_scene"`
}

type Character struct {
	model.Model
	StoryID     string
	OwnerID     string
	Name        string
	Description string
	States      []AppearanceState
}

// AppearanceAt returns how the character looks in scene number n: the
// state with the highest FromScene not after n, or the base description
// when no state applies yet.
func (c *Character) AppearanceAt(n int) string {
	best := -1
	for i, s := range c.States {
		if s.FromScene > n {
			continue
		}
		if best < 0 || s.FromScene >= c.States[best].FromScene {
			best = i
		}
	}

	if best < 0 || c.States[best].Description == "" {
		return c.Description
	}
	return c.States[best].Description
}
