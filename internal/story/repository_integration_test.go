//go:build integration

package story_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/story"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	ownerID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"

	querySeedOwner = `
INSERT INTO users (id, email, password_hash) VALUES
('f47ac10b-58cc-4372-a567-0e02b2c3d479', 'alice@example.com', 'hash')`

	querySeedStories = `
INSERT INTO stories (id, user_id, title, body, status, created_at, deleted_at) VALUES
('0b6f2a4e-7c1d-4f5e-9a3b-2d8c1e0f6a71', 'f47ac10b-58cc-4372-a567-0e02b2c3d479', 'Older', 'One. Two.', 'draft', '2025-05-09T10:00:00Z', NULL),
('7d3e9c2b-1a4f-4b8e-8c6d-5e2f0a9b3c14', 'f47ac10b-58cc-4372-a567-0e02b2c3d479', 'Newer', 'Three.', 'segmented', '2025-05-10T10:00:00Z', NULL),
('c2a8e6f4-9b1d-4e3a-b7c5-0d4f8a2e6b19', 'f47ac10b-58cc-4372-a567-0e02b2c3d479', 'Gone', 'Four.', 'draft', '2025-05-11T10:00:00Z', '2025-05-12T10:00:00Z')`
)

func seedStories(t *testing.T) (*story.SQLRepository, context.Context) {
	t.Helper()

	conn, tx := db.Setup(t)
	for _, q := range []string{querySeedOwner, querySeedStories} {
		if _, err := tx.Exec(q); err != nil {
			t.Fatal(err)
		}
	}

	return story.NewRepository(conn), db.NewContextWithTx(context.Background(), tx)
}

func TestIntegrationRepository_CreateFind(t *testing.T) {
	t.Parallel()

	repo, txCtx := seedStories(t)

	created, err := repo.Create(txCtx, story.CreateParams{UserID: ownerID, Title: "Lighthouse", Body: lighthouse, Status: story.StatusSegmented})
	if err != nil {
		t.Fatalf("repo.Create = %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Errorf("created = %+v", created)
	}

	found, err := repo.Find(txCtx, created.ID)
	if err != nil {
		t.Fatalf("repo.Find = %v", err)
	}
	if found.Body != lighthouse || found.UserID != ownerID || found.Status != story.StatusSegmented {
		t.Errorf("found = %+v", found)
	}
}

func TestIntegrationRepository_List(t *testing.T) {
	t.Parallel()

	repo, txCtx := seedStories(t)

	stories, err := repo.List(txCtx, ownerID)
	if err != nil {
		t.Fatalf("repo.List = %v", err)
	}

	if len(stories) != 2 || stories[0].Title != "Newer" || stories[1].Title != "Older" {
		t.Errorf("repo.List = %+v, want newest first without deleted stories", stories)
	}
	if stories[0].Body != "" {
		t.Error("repo.List loaded story bodies")
	}
}

func TestIntegrationRepository_Delete(t *testing.T) {
	t.Parallel()

	repo, txCtx := seedStories(t)

	const id = "0b6f2a4e-7c1d-4f5e-9a3b-2d8c1e0f6a71"
	if err := repo.Delete(txCtx, id); err != nil {
		t.Fatalf("repo.Delete = %v", err)
	}
	if _, err := repo.Find(txCtx, id); !errors.Is(err, story.ErrNotFound) {
		t.Errorf("repo.Find(deleted) = %v, want: %v", err, story.ErrNotFound)
	}
	if err := repo.Delete(txCtx, id); !errors.Is(err, story.ErrNotFound) {
		t.Errorf("repo.Delete twice = %v, want: %v", err, story.ErrNotFound)
	}
}
