package auth

import (
	"context"
	"fmt"

	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/user"
)

type Repository interface {
	Verify(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, passwordHash string) error
}

type SQLRepository struct {
	db db.Executor
}

var _ Repository = (*SQLRepository)(nil)

func NewRepository(conn db.Executor) *SQLRepository {
	return &SQLRepository{db: conn}
}

func (r *SQLRepository) Verify(ctx context.Context, userID string) error {
	const query = `
	UPDATE users SET verified_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND verified_at IS NULL AND deleted_at IS NULL`

	res, err := db.ExecutorFromContext(ctx, r.db).ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}

	numRows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if numRows == 0 {
		return fmt.Errorf("user not found or already verified: %w", user.ErrNotFound)
	}

	return nil
}

func (r *SQLRepository) ChangePassword(ctx context.Context, userID, passwordHash string) error {
	const query = `
	UPDATE users SET password_hash = $1, updated_at = NOW()
	WHERE id = $2 AND deleted_at IS NULL`

	res, err := db.ExecutorFromContext(ctx, r.db).ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}

	numRows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if numRows == 0 {
		return user.ErrNotFound
	}

	return nil
}
