//go:build integration

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/user"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	seededUserID = "3d594650-3436-11e5-bf21-0800200c9a66"
	missingID    = "00000000-0000-0000-0000-000000000000"
)

const queryUserSeed = `
INSERT INTO users (id, email, password_hash, role, verified_at, created_at, updated_at, deleted_at)
VALUES ($1, 'bob@example.com', 'old-hash', 'user', NULL, '2025-05-09T10:05:00Z', '2025-05-09T10:05:00Z', NULL)`

func TestIntegrationRepository_Verify(t *testing.T) {
	t.Parallel()

	conn, tx := db.Setup(t)
	if _, err := tx.Exec(queryUserSeed, seededUserID); err != nil {
		t.Fatalf("failed to seed users: %v", err)
	}

	tests := []struct {
		name   string
		userID string
		err    error
	}{
		{"User exists", seededUserID, nil},
		{"Already verified", seededUserID, user.ErrNotFound},
		{"User does not exist", missingID, user.ErrNotFound},
	}
	for _, tc := range tests {
		ctx := context.Background()
		txCtx := db.NewContextWithTx(ctx, tx)
		repo := auth.NewRepository(conn)

		err := repo.Verify(txCtx, tc.userID)
		if !errors.Is(err, tc.err) {
			t.Errorf("%s: repo.Verify(txCtx, %q) = %v, want: %v", tc.name, tc.userID, err, tc.err)
		}

		if tc.err == nil {
			const query = "SELECT verified_at FROM users WHERE id = $1"
			var verifiedAt *time.Time
			if err := tx.QueryRowContext(ctx, query, tc.userID).Scan(&verifiedAt); err != nil {
				t.Fatalf("failed to fetch verified user: %v", err)
			}
			if verifiedAt == nil {
				t.Errorf("verifiedAt = nil, want: non-nil")
			}
		}
	}
}

func TestIntegrationRepository_ChangePassword(t *testing.T) {
	t.Parallel()

	conn, tx := db.Setup(t)
	if _, err := tx.Exec(queryUserSeed, seededUserID); err != nil {
		t.Fatalf("failed to seed users: %v", err)
	}

	tests := []struct {
		name   string
		userID string
		err    error
	}{
		{"User exists", seededUserID, nil},
		{"User does not exist", missingID, user.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			txCtx := db.NewContextWithTx(ctx, tx)
			repo := auth.NewRepository(conn)

			const newHash = "new-hash"
			if err := repo.ChangePassword(txCtx, tc.userID, newHash); !errors.Is(err, tc.err) {
				t.Errorf("repo.ChangePassword(txCtx, %q, %q) = %v, want: %v", tc.userID, newHash, err, tc.err)
			}

			if tc.err == nil {
				const query = "SELECT password_hash FROM users WHERE id = $1"
				var got string
				if err := tx.QueryRowContext(ctx, query, tc.userID).Scan(&got); err != nil {
					t.Fatalf("failed to fetch updated user: %v", err)
				}
				if got != newHash {
					t.Errorf("password_hash = %q, want: %q", got, newHash)
				}
			}
		})
	}
}
