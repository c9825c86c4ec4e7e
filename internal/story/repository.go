package story

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferdiebergado/storyboard/internal/platform/db"
)

var ErrNotFound = errors.New("story repository: story not found")

type CreateParams struct {
	UserID string
	Title  string
	Body   string
	Status string
}

type SQLRepository struct {
	db db.Executor
}

var _ Repository = (*SQLRepository)(nil)

func NewRepository(conn db.Executor) *SQLRepository {
	return &SQLRepository{db: conn}
}

const queryCreate = `
INSERT INTO stories (user_id, title, body, status)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`

func (r *SQLRepository) Create(ctx context.Context, params CreateParams) (Story, error) {
	s := Story{UserID: params.UserID, Title: params.Title, Body: params.Body, Status: params.Status}
	row := db.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, queryCreate, params.UserID, params.Title, params.Body, params.Status)
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return s, fmt.Errorf("create story %q: %w", params.Title, err)
	}
	return s, nil
}

const queryFind = `
SELECT id, user_id, title, body, status, created_at, updated_at
FROM stories
WHERE id = $1 AND deleted_at IS NULL`

func (r *SQLRepository) Find(ctx context.Context, storyID string) (*Story, error) {
	var s Story
	row := db.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, queryFind, storyID)
	if err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.Body, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find story %s: %w", storyID, err)
	}
	return &s, nil
}

const queryList = `
SELECT id, user_id, title, status, created_at, updated_at
FROM stories
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC`

// List returns the user's stories without their bodies.
func (r *SQLRepository) List(ctx context.Context, userID string) ([]Story, error) {
	rows, err := db.ExecutorFromContext(ctx, r.db).QueryContext(ctx, queryList, userID)
	if err != nil {
		return nil, fmt.Errorf("list stories of user %s: %w", userID, err)
	}
	defer rows.Close()

	//nolint:prealloc //Cannot identify the length of the rows without running another query.
	var stories []Story
	for rows.Next() {
		var s Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan story row: %w", err)
		}
		stories = append(stories, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over story rows: %w", err)
	}

	return stories, nil
}

const queryDelete = `
UPDATE stories SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

func (r *SQLRepository) Delete(ctx context.Context, storyID string) error {
	res, err := db.ExecutorFromContext(ctx, r.db).ExecContext(ctx, queryDelete, storyID)
	if err != nil {
		return fmt.Errorf("delete story %s: %w", storyID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for story %s: %w", storyID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
