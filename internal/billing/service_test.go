package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/billing"
	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/platform/functions"
)

const webhookSecret = "whsec_test"

// memLedger is an in-memory Repository with the same balance rules as the
// SQL one.
type memLedger struct {
	mu        sync.Mutex
	balances  map[string]int
	entries   []billing.Entry
	processed map[string]bool
}

func newLedger() *memLedger {
	return &memLedger{balances: map[string]int{}, processed: map[string]bool{}}
}

func (l *memLedger) Balance(_ context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

func (l *memLedger) Apply(_ context.Context, e billing.Entry) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.balances[e.UserID] + e.Amount
	if next < 0 {
		return 0, billing.ErrInsufficientCredits
	}
	l.balances[e.UserID] = next
	l.entries = append(l.entries, e)
	return next, nil
}

func (l *memLedger) Transactions(context.Context, string, int) ([]billing.Transaction, error) {
	return nil, nil
}

func (l *memLedger) MarkProcessed(_ context.Context, id, _ string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.processed[id] {
		return false, nil
	}
	l.processed[id] = true
	return true, nil
}

func newService(t *testing.T, repo billing.Repository, invoker functions.Invoker) *billing.Service {
	t.Helper()

	catalog, err := billing.ParseCatalog([]byte(catalogYAML))
	if err != nil {
		t.Fatalf("ParseCatalog() = %v", err)
	}
	cfg := &config.Billing{WebhookSecret: webhookSecret, SuccessURL: "https://app/ok", CancelURL: "https://app/cancel"}
	return billing.NewService(repo, &db.StubTxManager{}, invoker, catalog, cfg)
}

func TestService_DebitNeverGoesNegative(t *testing.T) {
	t.Parallel()

	ledger := newLedger()
	svc := newService(t, ledger, &functions.StubInvoker{})
	ctx := context.Background()

	if _, err := svc.Credit(ctx, "user-1", 3, "signup", ""); err != nil {
		t.Fatalf("Credit() = %v", err)
	}

	balance, err := svc.Debit(ctx, "user-1", 2, "image", "ref-1")
	if err != nil || balance != 1 {
		t.Fatalf("Debit() = %d, %v, want: 1, nil", balance, err)
	}

	if _, err := svc.Debit(ctx, "user-1", 2, "image", "ref-2"); !errors.Is(err, billing.ErrInsufficientCredits) {
		t.Errorf("Debit() = %v, want: %v", err, billing.ErrInsufficientCredits)
	}

	if got, _ := svc.Balance(ctx, "user-1"); got != 1 {
		t.Errorf("Balance() = %d, want: 1", got)
	}

	if _, err := svc.Debit(ctx, "user-1", 0, "image", ""); !errors.Is(err, billing.ErrInvalidAmount) {
		t.Errorf("Debit(0) = %v, want: %v", err, billing.ErrInvalidAmount)
	}
}

func TestService_HandleWebhook(t *testing.T) {
	t.Parallel()

	completed := []byte(`{"id":"evt_1","type":"checkout.completed","data":{"user_id":"user-1","item_id":"starter"}}`)

	tests := []struct {
		name        string
		payload     []byte
		signature   string
		wantErr     error
		wantBalance int
	}{
		{"credits the pack", completed, billing.Sign([]byte(webhookSecret), completed), nil, 20},
		{"bad signature", completed, billing.Sign([]byte("other"), completed), billing.ErrBadSignature, 0},
		{"garbage signature", completed, "sha256=zz", billing.ErrBadSignature, 0},
		{
			"unknown item",
			[]byte(`{"id":"evt_2","type":"checkout.completed","data":{"user_id":"user-1","item_id":"gold"}}`),
			"",
			billing.ErrUnknownItem,
			0,
		},
		{
			"ignored event type",
			[]byte(`{"id":"evt_3","type":"customer.updated","data":{}}`),
			"",
			nil,
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ledger := newLedger()
			svc := newService(t, ledger, &functions.StubInvoker{})

			sig := tt.signature
			if sig == "" {
				sig = billing.Sign([]byte(webhookSecret), tt.payload)
			}

			err := svc.HandleWebhook(context.Background(), tt.payload, sig)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HandleWebhook() = %v, want: %v", err, tt.wantErr)
			}

			if got, _ := ledger.Balance(context.Background(), "user-1"); got != tt.wantBalance {
				t.Errorf("balance = %d, want: %d", got, tt.wantBalance)
			}
		})
	}
}

func TestService_HandleWebhookReplayCreditsOnce(t *testing.T) {
	t.Parallel()

	ledger := newLedger()
	svc := newService(t, ledger, &functions.StubInvoker{})
	payload := []byte(`{"id":"evt_9","type":"invoice.paid","data":{"user_id":"user-1","item_id":"monthly"}}`)
	sig := billing.Sign([]byte(webhookSecret), payload)

	for range 3 {
		if err := svc.HandleWebhook(context.Background(), payload, sig); err != nil {
			t.Fatalf("HandleWebhook() = %v", err)
		}
	}

	if got, _ := ledger.Balance(context.Background(), "user-1"); got != 120 {
		t.Errorf("balance = %d, want: 120", got)
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Reason != billing.ReasonSubscription || ledger.entries[0].Ref != "evt_9" {
		t.Errorf("entries = %+v", ledger.entries)
	}
}

func TestService_Checkout(t *testing.T) {
	t.Parallel()

	var gotName string
	invoker := &functions.StubInvoker{
		InvokeFunc: func(_ context.Context, name string, payload, out any, _ ...functions.InvokeOption) error {
			gotName = name
			session, ok := out.(*billing.CheckoutSession)
			if !ok {
				return errors.New("unexpected out type")
			}
			session.ID = "cs_1"
			session.URL = "https://pay.example.com/cs_1"
			return nil
		},
	}
	svc := newService(t, newLedger(), invoker)

	session, err := svc.Checkout(context.Background(), "user-1", "studio")
	if err != nil {
		t.Fatalf("Checkout() = %v", err)
	}
	if gotName != billing.FuncCreateCheckout {
		t.Errorf("invoked %q, want: %q", gotName, billing.FuncCreateCheckout)
	}
	if session.URL != "https://pay.example.com/cs_1" {
		t.Errorf("session.URL = %q", session.URL)
	}

	if _, err := svc.Checkout(context.Background(), "user-1", "gold"); !errors.Is(err, billing.ErrUnknownItem) {
		t.Errorf("Checkout(gold) = %v, want: %v", err, billing.ErrUnknownItem)
	}
}
