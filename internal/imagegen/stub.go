package imagegen

import (
	"context"
	"errors"
)

type StubRegenerator struct {
	RegenerateFunc func(ctx context.Context, userID, sceneID, prompt string) (*Result, error)
}

var _ Regenerator = (*StubRegenerator)(nil)

func (s *StubRegenerator) Regenerate(ctx context.Context, userID, sceneID, prompt string) (*Result, error) {
	if s.RegenerateFunc == nil {
		return nil, errors.New("Regenerate() not implemented by stub")
	}
	return s.RegenerateFunc(ctx, userID, sceneID, prompt)
}

type StubLedger struct {
	DebitFunc  func(ctx context.Context, userID string, amount int, reason, ref string) (int, error)
	CreditFunc func(ctx context.Context, userID string, amount int, reason, ref string) (int, error)
}

var _ Ledger = (*StubLedger)(nil)

func (l *StubLedger) Debit(ctx context.Context, userID string, amount int, reason, ref string) (int, error) {
	if l.DebitFunc == nil {
		return 0, errors.New("Debit() not implemented by stub")
	}
	return l.DebitFunc(ctx, userID, amount, reason, ref)
}

func (l *StubLedger) Credit(ctx context.Context, userID string, amount int, reason, ref string) (int, error) {
	if l.CreditFunc == nil {
		return 0, errors.New("Credit() not implemented by stub")
	}
	return l.CreditFunc(ctx, userID, amount, reason, ref)
}
