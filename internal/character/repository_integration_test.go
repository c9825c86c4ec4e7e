//go:build integration

package character_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/character"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	ownerID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	storyID = "7d3e9c2b-1a4f-4b8e-8c6d-5e2f0a9b3c14"
)

var seedCharacters = []string{
	`INSERT INTO users (id, email, password_hash) VALUES ('f47ac10b-58cc-4372-a567-0e02b2c3d479', 'alice@example.com', 'hash')`,
	`INSERT INTO stories (id, user_id, title, body, status) VALUES
('7d3e9c2b-1a4f-4b8e-8c6d-5e2f0a9b3c14', 'f47ac10b-58cc-4372-a567-0e02b2c3d479', 'Lighthouse', 'One. Two.', 'segmented')`,
}

func setupCharacters(t *testing.T) (*character.SQLRepository, context.Context) {
	t.Helper()

	conn, tx := db.Setup(t)
	for _, q := range seedCharacters {
		if _, err := tx.Exec(q); err != nil {
			t.Fatal(err)
		}
	}

	return character.NewRepository(conn), db.NewContextWithTx(context.Background(), tx)
}

func TestIntegrationRepository_CreateWithStates(t *testing.T) {
	t.Parallel()

	repo, txCtx := setupCharacters(t)

	mara, err := repo.Create(txCtx, character.CreateParams{StoryID: storyID, Name: "Mara", Description: "grey coat"})
	if err != nil {
		t.Fatalf("repo.Create = %v", err)
	}
	if _, err := repo.Create(txCtx, character.CreateParams{StoryID: storyID, Name: "Tom"}); err != nil {
		t.Fatalf("repo.Create = %v", err)
	}

	for _, p := range []character.StateParams{
		{Label: "wet", Description: "soaked", FromScene: 2},
		{Label: "dawn", Description: "dry, tired", FromScene: 4},
	} {
		if _, err := repo.AddState(txCtx, mara.ID, p); err != nil {
			t.Fatalf("repo.AddState = %v", err)
		}
	}

	found, err := repo.Find(txCtx, mara.ID)
	if err != nil {
		t.Fatalf("repo.Find = %v", err)
	}
	if found.OwnerID != ownerID || len(found.States) != 2 || found.AppearanceAt(3) != "soaked" {
		t.Errorf("found = %+v", found)
	}

	all, err := repo.ListByStory(txCtx, storyID)
	if err != nil {
		t.Fatalf("repo.ListByStory = %v", err)
	}
	if len(all) != 2 || all[0].Name != "Mara" || len(all[0].States) != 2 || len(all[1].States) != 0 {
		t.Errorf("repo.ListByStory = %+v", all)
	}
}

func TestIntegrationRepository_DuplicateName(t *testing.T) {
	t.Parallel()

	repo, txCtx := setupCharacters(t)

	if _, err := repo.Create(txCtx, character.CreateParams{StoryID: storyID, Name: "Mara"}); err != nil {
		t.Fatal(err)
	}
	// a failed statement aborts the transaction, so this is the last query
	if _, err := repo.Create(txCtx, character.CreateParams{StoryID: storyID, Name: "Mara"}); !errors.Is(err, character.ErrDuplicateName) {
		t.Errorf("repo.Create(duplicate) = %v, want: %v", err, character.ErrDuplicateName)
	}
}

func TestIntegrationRepository_Update(t *testing.T) {
	t.Parallel()

	repo, txCtx := setupCharacters(t)

	c, err := repo.Create(txCtx, character.CreateParams{StoryID: storyID, Name: "Mara", Description: "grey coat"})
	if err != nil {
		t.Fatal(err)
	}

	desc := "red coat"
	if err := repo.Update(txCtx, c.ID, character.UpdateParams{Description: &desc}); err != nil {
		t.Fatalf("repo.Update = %v", err)
	}

	got, err := repo.Find(txCtx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Mara" || got.Description != desc {
		t.Errorf("got = %+v", got)
	}

	owner, err := repo.StoryOwner(txCtx, storyID)
	if err != nil || owner != ownerID {
		t.Errorf("repo.StoryOwner = %q, %v", owner, err)
	}
}
