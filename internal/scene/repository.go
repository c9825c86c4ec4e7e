package scene

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ferdiebergado/storyboard/internal/platform/db"
)

var ErrNotFound = errors.New("scene repository: scene not found")

type CreateParams struct {
	StoryID        string
	Number         int
	Title          string
	Summary        string
	Start          int
	End            int
	Prompt         string
	Characters     []string
	AnchorSentence *int
}

type UpdateParams struct {
	Title   *string
	Summary *string
	Prompt  *string
}

type SQLRepository struct {
	db db.Executor
}

var _ Repository = (*SQLRepository)(nil)

func NewRepository(conn db.Executor) *SQLRepository {
	return &SQLRepository{db: conn}
}

const sceneColumns = `
s.id, s.story_id, st.user_id, s.number, s.title, s.summary, s.start_offset, s.end_offset,
s.prompt, s.image_url, s.characters, s.anchor_sentence, s.created_at, s.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScene(row rowScanner) (Scene, error) {
	var (
		s          Scene
		imageURL   sql.NullString
		characters []byte
		anchor     sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.StoryID, &s.OwnerID, &s.Number, &s.Title, &s.Summary, &s.Start, &s.End,
		&s.Prompt, &imageURL, &characters, &anchor, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}

	s.ImageURL = imageURL.String
	if anchor.Valid {
		a := int(anchor.Int64)
		s.AnchorSentence = &a
	}
	if len(characters) > 0 {
		if err := json.Unmarshal(characters, &s.Characters); err != nil {
			return s, fmt.Errorf("decode characters of scene %s: %w", s.ID, err)
		}
	}
	return s, nil
}

const queryCreate = `
INSERT INTO scenes (story_id, number, title, summary, start_offset, end_offset, prompt, characters, anchor_sentence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, updated_at`

func (r *SQLRepository) Create(ctx context.Context, params CreateParams) (Scene, error) {
	characters, err := json.Marshal(nonNil(params.Characters))
	if err != nil {
		return Scene{}, fmt.Errorf("encode scene characters: %w", err)
	}

	s := Scene{
		StoryID:        params.StoryID,
		Number:         params.Number,
		Title:          params.Title,
		Summary:        params.Summary,
		Start:          params.Start,
		End:            params.End,
		Prompt:         params.Prompt,
		Characters:     params.Characters,
		AnchorSentence: params.AnchorSentence,
	}

	row := db.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, queryCreate,
		params.StoryID, params.Number, params.Title, params.Summary, params.Start, params.End,
		params.Prompt, string(characters), params.AnchorSentence)
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return s, fmt.Errorf("create scene %d of story %s: %w", params.Number, params.StoryID, err)
	}
	return s, nil
}

const queryFind = `
SELECT` + sceneColumns + `
FROM scenes s
JOIN stories st ON st.id = s.story_id AND st.deleted_at IS NULL
WHERE s.id = $1`

func (r *SQLRepository) Find(ctx context.Context, sceneID string) (*Scene, error) {
	row := db.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, queryFind, sceneID)
	s, err := scanScene(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find scene %s: %w", sceneID, err)
	}
	return &s, nil
}

const queryListByStory = `
SELECT` + sceneColumns + `
FROM scenes s
JOIN stories st ON st.id = s.story_id AND st.deleted_at IS NULL
WHERE s.story_id = $1
ORDER BY s.number`

func (r *SQLRepository) ListByStory(ctx context.Context, storyID string) ([]Scene, error) {
	rows, err := db.ExecutorFromContext(ctx, r.db).QueryContext(ctx, queryListByStory, storyID)
	if err != nil {
		return nil, fmt.Errorf("list scenes of story %s: %w", storyID, err)
	}
	defer rows.Close()

	//nolint:prealloc //Cannot identify the length of the rows without running another query.
	var scenes []Scene
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scene row: %w", err)
		}
		scenes = append(scenes, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over scene rows: %w", err)
	}

	return scenes, nil
}

const queryStoryOwner = `
SELECT user_id FROM stories WHERE id = $1 AND deleted_at IS NULL`

func (r *SQLRepository) StoryOwner(ctx context.Context, storyID string) (string, error) {
	var owner string
	row := db.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, queryStoryOwner, storyID)
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find owner of story %s: %w", storyID, err)
	}
	return owner, nil
}

const queryUpdate = `
UPDATE scenes
SET title = COALESCE($2, title),
	summary = COALESCE($3, summary),
	prompt = COALESCE($4, prompt),
	updated_at = NOW()
WHERE id = $1`

func (r *SQLRepository) Update(ctx context.Context, sceneID string, params UpdateParams) error {
	res, err := db.ExecutorFromContext(ctx, r.db).ExecContext(ctx, queryUpdate,
		sceneID, params.Title, params.Summary, params.Prompt)
	if err != nil {
		return fmt.Errorf("update scene %s: %w", sceneID, err)
	}
	return expectOne(res, sceneID)
}

const querySetImage = `
UPDATE scenes SET image_url = $2, updated_at = NOW() WHERE id = $1`

func (r *SQLRepository) SetImage(ctx context.Context, sceneID, imageURL string) error {
	res, err := db.ExecutorFromContext(ctx, r.db).ExecContext(ctx, querySetImage, sceneID, imageURL)
	if err != nil {
		return fmt.Errorf("set image of scene %s: %w", sceneID, err)
	}
	return expectOne(res, sceneID)
}

// Numbers are unique per story with a deferred constraint, so a reorder
// must run inside a transaction.
const querySetPosition = `
UPDATE scenes SET number = $3, anchor_sentence = $4, updated_at = NOW()
WHERE id = $1 AND story_id = $2`

func (r *SQLRepository) SetPositions(ctx context.Context, storyID string, positions []Position) error {
	exec := db.ExecutorFromContext(ctx, r.db)
	for _, p := range positions {
		res, err := exec.ExecContext(ctx, querySetPosition, p.SceneID, storyID, p.Number, p.AnchorSentence)
		if err != nil {
			return fmt.Errorf("move scene %s to %d: %w", p.SceneID, p.Number, err)
		}
		if err := expectOne(res, p.SceneID); err != nil {
			return err
		}
	}
	return nil
}

const querySetAnchor = `
UPDATE scenes SET anchor_sentence = $3, updated_at = NOW()
WHERE id = $1 AND story_id = $2`

func (r *SQLRepository) SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error {
	exec := db.ExecutorFromContext(ctx, r.db)
	for sceneID, sentence := range anchors {
		res, err := exec.ExecContext(ctx, querySetAnchor, sceneID, storyID, sentence)
		if err != nil {
			return fmt.Errorf("anchor scene %s: %w", sceneID, err)
		}
		if err := expectOne(res, sceneID); err != nil {
			return err
		}
	}
	return nil
}

func expectOne(res sql.Result, sceneID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for scene %s: %w", sceneID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
