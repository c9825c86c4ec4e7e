package character

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("character repository: character not found")
	ErrDuplicateName = errors.New("character repository: name already used in story")
)

const pgUniqueViolation = "23505"

type CreateParams struct {
	StoryID     string
	Name        string
	Description string
}

type UpdateParams struct {
	Name        *string
	Description *string
}

type StateParams struct {
	Label       string
	Description string
	FromScene   int
}

type SQLRepository struct {
	db db.Executor
}

var _ Repository = (*SQLRepository)(nil)

func NewRepository(conn db.Executor) *SQLRepository {
	return &SQLRepository{db: conn}
}

func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

const queryCreate = `
INSERT INTO characters (story_id, name, description)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`

func (r *SQLRepository) Create(ctx context.Context, params CreateParams) (Character, error) {
	c := Character{StoryID: params.StoryID, Name: params.Name, Description: params.Description}
	row := db.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, queryCreate, params.StoryID, params.Name, params.Description)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if uniqueViolation(err) {
			return c, ErrDuplicateName
		}
		return c, fmt.Errorf("create character %s: %w", params.Name, err)
	}
	return c, nil
}

const queryFind = `
SELECT c.id, c.story_id, st.user_id, c.name, c.description, c.created_at, c.updated_at
FROM characters c
JOIN stories st ON st.id = c.story_id AND st.deleted_at IS NULL
WHERE c.id = $1`

func (r *SQLRepository) Find(ctx context.Context, characterID string) (*Character, error) {
	exec := db.ExecutorFromContext(ctx, r.db)

	var c Character
	row := exec.QueryRowContext(ctx, queryFind, characterID)
	if err := row.Scan(&c.ID, &c.StoryID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find character %s: %w", characterID, err)
	}

	states, err := r.states(ctx, exec, queryStatesOfCharacter, characterID)
	if err != nil {
		return nil, err
	}
	c.States = states[c.ID]
	return &c, nil
}

const queryListByStory = `
SELECT c.id, c.story_id, st.user_id, c.name, c.description, c.created_at, c.updated_at
FROM characters c
JOIN stories st ON st.id = c.story_id AND st.deleted_at IS NULL
WHERE c.story_id = $1
ORDER BY c.name`

func (r *SQLRepository) ListByStory(ctx context.Context, storyID string) ([]Character, error) {
	exec := db.ExecutorFromContext(ctx, r.db)

	rows, err := exec.QueryContext(ctx, queryListByStory, storyID)
	if err != nil {
		return nil, fmt.Errorf("list characters of story %s: %w", storyID, err)
	}
	defer rows.Close()

	//nolint:prealloc //Cannot identify the length of the rows without running another query.
	var characters []Character
	for rows.Next() {
		var c Character
		if err := rows.Scan(&c.ID, &c.StoryID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan character row: %w", err)
		}
		characters = append(characters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over character rows: %w", err)
	}

	states, err := r.states(ctx, exec, queryStatesOfStory, storyID)
	if err != nil {
		return nil, err
	}
	for i := range characters {
		characters[i].States = states[characters[i].ID]
	}

	return characters, nil
}

const (
	queryStatesOfCharacter = `
SELECT character_id, id, label, description, from_scene
FROM appearance_states
WHERE character_id = $1
ORDER BY from_scene, created_at`

	queryStatesOfStory = `
SELECT a.character_id, a.id, a.label, a.description, a.from_scene
FROM appearance_states a
JOIN characters c ON c.id = a.character_id
WHERE c.story_id = $1
ORDER BY a.from_scene, a.created_at`
)

func (r *SQLRepository) states(ctx context.Context, exec db.Executor, query, arg string) (map[string][]AppearanceState, error) {
	rows, err := exec.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list appearance states: %w", err)
	}
	defer rows.Close()

	states := make(map[string][]AppearanceState)
	for rows.Next() {
		var (
			characterID string
			s           AppearanceState
		)
		if err := rows.Scan(&characterID, &s.ID, &s.Label, &s.Description, &s.FromScene); err != nil {
			return nil, fmt.Errorf("scan appearance state row: %w", err)
		}
		states[characterID] = append(states[characterID], s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over appearance state rows: %w", err)
	}

	return states, nil
}

const queryUpdate = `
UPDATE characters
SET name = COALESCE($2, name),
	description = COALESCE($3, description),
	updated_at = NOW()
WHERE id = $1`

func (r *SQLRepository) Update(ctx context.Context, characterID string, params UpdateParams) error {
	res, err := db.ExecutorFromContext(ctx, r.db).ExecContext(ctx, queryUpdate, characterID, params.Name, params.Description)
	if err != nil {
		if uniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("update character %s: %w", characterID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for character %s: %w", characterID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const queryAddState = `
INSERT INTO appearance_states (character_id, label, description, from_scene)
VALUES ($1, $2, $3, $4)
RETURNING id`

func (r *SQLRepository) AddState(ctx context.Context, characterID string, params StateParams) (AppearanceState, error) {
	s := AppearanceState{Label: params.Label, Description: params.Description, FromScene: params.FromScene}
	row := db.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, queryAddState,
		characterID, params.Label, params.Description, params.FromScene)
	if err := row.Scan(&s.ID); err != nil {
		return s, fmt.Errorf("add appearance state to character %s: %w", characterID, err)
	}
	return s, nil
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
