package placement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferdiebergado/storyboard/internal/platform/db"
)

var ErrNotFound = errors.New("placement: story not found")

// Source is the persisted state a placement session starts from.
type Source struct {
	StoryID string
	UserID  string
	Body    string
	Scenes  []SceneRef
	// Stored holds anchors already saved for a scene, keyed by scene id.
	Stored map[string]int
}

type SQLRepository struct {
	db db.Executor
}

var _ Store = (*SQLRepository)(nil)

func NewRepository(conn db.Executor) *SQLRepository {
	return &SQLRepository{db: conn}
}

const (
	queryStorySource = `
SELECT user_id, body
FROM stories
WHERE id = $1 AND deleted_at IS NULL`

	querySceneRefs = `
SELECT id, number, start_offset, anchor_sentence
FROM scenes
WHERE story_id = $1
ORDER BY number`
)

func (r *SQLRepository) Source(ctx context.Context, storyID string) (*Source, error) {
	exec := db.ExecutorFromContext(ctx, r.db)

	src := &Source{StoryID: storyID, Stored: make(map[string]int)}
	if err := exec.QueryRowContext(ctx, queryStorySource, storyID).Scan(&src.UserID, &src.Body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load story %s: %w", storyID, err)
	}

	rows, err := exec.QueryContext(ctx, querySceneRefs, storyID)
	if err != nil {
		return nil, fmt.Errorf("load scenes of story %s: %w", storyID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ref    SceneRef
			anchor sql.NullInt64
		)
		if err := rows.Scan(&ref.ID, &ref.Number, &ref.Start, &anchor); err != nil {
			return nil, fmt.Errorf("scan scene ref: %w", err)
		}
		src.Scenes = append(src.Scenes, ref)
		if anchor.Valid {
			src.Stored[ref.ID] = int(anchor.Int64)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over scene refs: %w", err)
	}

	return src, nil
}
