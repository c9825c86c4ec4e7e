// Package story imports narrative text and turns it into a storyboard of
// scenes and characters.
package story

import (
	"github.com/ferdiebergado/storyboard/internal/character"
	"github.com/ferdiebergado/storyboard/internal/model"
	"github.com/ferdiebergado/storyboard/internal/scene"
)

const (
	// StatusSegmented stories were split by the segmentation function.
	StatusSegmented = "segmented"
	// StatusDraft stories were split on paragraphs and wait for review.
	StatusDraft = "draft"
)

type Story struct {
	model.Model
	UserID string
	Title  string
	Body   string
	Status string
}

type Storyboard struct {
	Story      Story
	Scenes     []scene.Scene
	Characters []character.Character
}
