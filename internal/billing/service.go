package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/platform/functions"
)

var ErrInvalidAmount = errors.New("billing: amount must be positive")

const (
	FuncCreateCheckout = "create-checkout-session"

	ReasonPurchase     = "purchase"
	ReasonSubscription = "subscription"
)

type Repository interface {
	Balance(ctx context.Context, userID string) (int, error)
	Apply(ctx context.Context, entry Entry) (int, error)
	Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
	MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Service struct {
	repo    Repository
	txMgr   db.TxManager
	invoker functions.Invoker
	catalog *Catalog
	cfg     *config.Billing
}

func NewService(repo Repository, txMgr db.TxManager, invoker functions.Invoker, catalog *Catalog, cfg *config.Billing) *Service {
	return &Service{
		repo:    repo,
		txMgr:   txMgr,
		invoker: invoker,
		catalog: catalog,
		cfg:     cfg,
	}
}

func (s *Service) Catalog() *Catalog {
	return s.catalog
}

func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	return s.repo.Balance(ctx, userID)
}

func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	return s.repo.Transactions(ctx, userID, limit)
}

// Credit adds amount to the user's balance and returns the new balance.
func (s *Service) Credit(ctx context.Context, userID string, amount int, reason, ref string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.apply(ctx, Entry{UserID: userID, Amount: amount, Reason: reason, Ref: ref})
}

// Debit takes amount from the user's balance. The balance never goes below
// zero: a short balance fails with ErrInsufficientCredits.
func (s *Service) Debit(ctx context.Context, userID string, amount int, reason, ref string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.apply(ctx, Entry{UserID: userID, Amount: -amount, Reason: reason, Ref: ref})
}

func (s *Service) apply(ctx context.Context, entry Entry) (int, error) {
	var balance int
	err := s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		balance, err = s.repo.Apply(txCtx, entry)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

type checkoutRequest struct {
	UserID     string `json:"user_id"`
	ItemID     string `json:"item_id"`
	Kind       string `json:"kind"`
	PriceCents int    `json:"price_cents"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func (s *Service) Checkout(ctx context.Context, userID, itemID string) (*CheckoutSession, error) {
	item, err := s.catalog.Find(itemID)
	if err != nil {
		return nil, err
	}

	req := checkoutRequest{
		UserID:     userID,
		ItemID:     item.ID,
		Kind:       item.Kind,
		PriceCents: item.PriceCents,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	}

	var session CheckoutSession
	if err := s.invoker.Invoke(ctx, FuncCreateCheckout, req, &session); err != nil {
		return nil, fmt.Errorf("create checkout session for %s: %w", itemID, err)
	}
	if session.URL == "" {
		return nil, &functions.StatusError{Function: FuncCreateCheckout, Status: http.StatusBadGateway, Message: "no checkout url"}
	}

	return &session, nil
}

// HandleWebhook verifies and applies a payment event. Each event id credits
// at most once; replays are accepted and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := VerifySignature([]byte(s.cfg.WebhookSecret), payload, signature); err != nil {
		return err
	}

	evt, err := parseEvent(payload)
	if err != nil {
		return err
	}

	var reason string
	switch evt.Type {
	case EventCheckoutCompleted:
		reason = ReasonPurchase
	case EventInvoicePaid:
		reason = ReasonSubscription
	default:
		slog.Info("ignoring webhook event", "event_id", evt.ID, "type", evt.Type)
		return nil
	}

	if evt.Data.UserID == "" {
		return fmt.Errorf("%w: event %s has no user", ErrBadEvent, evt.ID)
	}

	item, err := s.catalog.Find(evt.Data.ItemID)
	if err != nil {
		return err
	}

	return s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		fresh, err := s.repo.MarkProcessed(txCtx, evt.ID, evt.Type)
		if err != nil {
			return err
		}
		if !fresh {
			slog.Info("webhook event already processed", "event_id", evt.ID)
			return nil
		}

		balance, err := s.repo.Apply(txCtx, Entry{UserID: evt.Data.UserID, Amount: item.Credits, Reason: reason, Ref: evt.ID})
		if err != nil {
			return err
		}

		slog.Info("credits purchased", "user_id", evt.Data.UserID, "item_id", item.ID, "credits", item.Credits, "balance", balance)
		return nil
	})
}
