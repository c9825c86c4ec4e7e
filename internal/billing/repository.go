package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ferdiebergado/storyboard/internal/platform/db"
)

var ErrInsufficientCredits = errors.New("billing: insufficient credits")

type Transaction struct {
	ID           string    `json:"id"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	Reason       string    `json:"reason"`
	Ref          string    `json:"ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Entry struct {
	UserID string
	Amount int
	Reason string
	Ref    string
}

type SQLRepository struct {
	db db.Executor
}

var _ Repository = (*SQLRepository)(nil)

func NewRepository(conn db.Executor) *SQLRepository {
	return &SQLRepository{db: conn}
}

const queryBalance = `
SELECT balance FROM credit_accounts WHERE user_id = $1`

func (r *SQLRepository) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	row := db.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, queryBalance, userID)
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("balance of user %s: %w", userID, err)
	}
	return balance, nil
}

const (
	queryAdd = `
INSERT INTO credit_accounts (user_id, balance)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE
SET balance = credit_accounts.balance + EXCLUDED.balance, updated_at = NOW()
RETURNING balance`

	querySubtract = `
UPDATE credit_accounts
SET balance = balance - $2, updated_at = NOW()
WHERE user_id = $1 AND balance >= $2
RETURNING balance`

	queryRecord = `
INSERT INTO credit_transactions (user_id, amount, balance_after, reason, ref)
VALUES ($1, $2, $3, $4, NULLIF($5, ''))`
)

// Apply adds entry.Amount, which may be negative, to the user's balance and
// records the transaction. A debit larger than the balance fails with
// ErrInsufficientCredits and changes nothing.
func (r *SQLRepository) Apply(ctx context.Context, entry Entry) (int, error) {
	exec := db.ExecutorFromContext(ctx, r.db)

	var (
		balance int
		row     *sql.Row
	)
	if entry.Amount >= 0 {
		row = exec.QueryRowContext(ctx, queryAdd, entry.UserID, entry.Amount)
	} else {
		row = exec.QueryRowContext(ctx, querySubtract, entry.UserID, -entry.Amount)
	}

	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInsufficientCredits
		}
		return 0, fmt.Errorf("apply %d credits to user %s: %w", entry.Amount, entry.UserID, err)
	}

	if _, err := exec.ExecContext(ctx, queryRecord, entry.UserID, entry.Amount, balance, entry.Reason, entry.Ref); err != nil {
		return 0, fmt.Errorf("record credit transaction: %w", err)
	}

	return balance, nil
}

const queryTransactions = `
SELECT id, amount, balance_after, reason, COALESCE(ref, ''), created_at
FROM credit_transactions
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

func (r *SQLRepository) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := db.ExecutorFromContext(ctx, r.db).QueryContext(ctx, queryTransactions, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions of user %s: %w", userID, err)
	}
	defer rows.Close()

	//nolint:prealloc //Cannot identify the length of the rows without running another query.
	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.BalanceAfter, &t.Reason, &t.Ref, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over transaction rows: %w", err)
	}

	return txns, nil
}

const queryMarkProcessed = `
INSERT INTO processed_events (id, type)
VALUES ($1, $2)
ON CONFLICT (id) DO NOTHING`

// MarkProcessed records a webhook event id. It reports false when the event
// was already recorded.
func (r *SQLRepository) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	res, err := db.ExecutorFromContext(ctx, r.db).ExecContext(ctx, queryMarkProcessed, eventID, eventType)
	if err != nil {
		return false, fmt.Errorf("mark event %s processed: %w", eventID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for event %s: %w", eventID, err)
	}
	return n == 1, nil
}
