package character_test

import (
	"testing"

	"github.com/ferdiebergado/storyboard/internal/character"
)

func TestCharacter_AppearanceAt(t *testing.T) {
	t.Parallel()

	mara := &character.Character{
		Name:        "Mara",
		Description: "keeper, grey coat",
		States: []character.AppearanceState{
			{Label: "soaked", Description: "drenched, hair plastered down", FromScene: 3},
			{Label: "injured", Description: "bandaged left arm", FromScene: 6},
			{Label: "blank", Description: "", FromScene: 9},
		},
	}

	tests := []struct {
		scene int
		want  string
	}{
		{1, "keeper, grey coat"},
		{2, "keeper, grey coat"},
		{3, "drenched, hair plastered down"},
		{5, "drenched, hair plastered down"},
		{6, "bandaged left arm"},
		{8, "bandaged left arm"},
		{9, "keeper, grey coat"},
	}

	for _, tt := range tests {
		if got := mara.AppearanceAt(tt.scene); got != tt.want {
			t.Errorf("AppearanceAt(%d) = %q, want: %q", tt.scene, got, tt.want)
		}
	}
}

func TestCharacter_AppearanceAtLaterStateWinsTie(t *testing.T) {
	t.Parallel()

	c := &character.Character{
		Description: "base",
		States: []character.AppearanceState{
			{Description: "first", FromScene: 2},
			{Description: "second", FromScene: 2},
		},
	}

	if got := c.AppearanceAt(2); got != "second" {
		t.Errorf("AppearanceAt(2) = %q, want: %q", got, "second")
	}
}
