package billing

import (
	"context"
	"errors"
)

type StubRepo struct {
	BalanceFunc       func(ctx context.Context, userID string) (int, error)
	ApplyFunc         func(ctx context.Context, entry Entry) (int, error)
	TransactionsFunc  func(ctx context.Context, userID string, limit int) ([]Transaction, error)
	MarkProcessedFunc func(ctx context.Context, eventID, eventType string) (bool, error)
}

var _ Repository = (*StubRepo)(nil)

func (r *StubRepo) Balance(ctx context.Context, userID string) (int, error) {
	if r.BalanceFunc == nil {
		return 0, errors.New("Balance() not implemented by stub")
	}
	return r.BalanceFunc(ctx, userID)
}

func (r *StubRepo) Apply(ctx context.Context, entry Entry) (int, error) {
	if r.ApplyFunc == nil {
		return 0, errors.New("Apply() not implemented by stub")
	}
	return r.ApplyFunc(ctx, entry)
}

func (r *StubRepo) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if r.TransactionsFunc == nil {
		return nil, errors.New("Transactions() not implemented by stub")
	}
	return r.TransactionsFunc(ctx, userID, limit)
}

func (r *StubRepo) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	if r.MarkProcessedFunc == nil {
		return false, errors.New("MarkProcessed() not implemented by stub")
	}
	return r.MarkProcessedFunc(ctx, eventID, eventType)
}

type StubService struct {
	CatalogFunc       func() *Catalog
	BalanceFunc       func(ctx context.Context, userID string) (int, error)
	TransactionsFunc  func(ctx context.Context, userID string, limit int) ([]Transaction, error)
	CheckoutFunc      func(ctx context.Context, userID, itemID string) (*CheckoutSession, error)
	HandleWebhookFunc func(ctx context.Context, payload []byte, signature string) error
}

var _ BillingService = (*StubService)(nil)

func (s *StubService) Catalog() *Catalog {
	if s.CatalogFunc == nil {
		return &Catalog{}
	}
	return s.CatalogFunc()
}

func (s *StubService) Balance(ctx context.Context, userID string) (int, error) {
	if s.BalanceFunc == nil {
		return 0, errors.New("Balance() not implemented by stub")
	}
	return s.BalanceFunc(ctx, userID)
}

func (s *StubService) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if s.TransactionsFunc == nil {
		return nil, errors.New("Transactions() not implemented by stub")
	}
	return s.TransactionsFunc(ctx, userID, limit)
}

func (s *StubService) Checkout(ctx context.Context, userID, itemID string) (*CheckoutSession, error) {
	if s.CheckoutFunc == nil {
		return nil, errors.New("Checkout() not implemented by stub")
	}
	return s.CheckoutFunc(ctx, userID, itemID)
}

func (s *StubService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.HandleWebhookFunc == nil {
		return errors.New("HandleWebhook() not implemented by stub")
	}
	return s.HandleWebhookFunc(ctx, payload, signature)
}
