package billing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
	"github.com/ferdiebergado/storyboard/internal/platform/functions"
)

const (
	MsgCheckoutCreated  = "Checkout session created."
	MsgWebhookAccepted  = "Event accepted."
	MsgUnknownItem      = "No such credit pack or plan."
	MsgInvalidSignature = "Invalid signature."

	defaultTxnLimit = 50
	maxTxnLimit     = 200
)

type BillingService interface {
	Catalog() *Catalog
	Balance(ctx context.Context, userID string) (int, error)
	Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
	Checkout(ctx context.Context, userID, itemID string) (*CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

var _ BillingService = (*Service)(nil)

type Handler struct {
	svc          BillingService
	maxBodyBytes int64
}

func NewHandler(svc BillingService, maxBodyBytes int64) *Handler {
	return &Handler{svc: svc, maxBodyBytes: maxBodyBytes}
}

func (h *Handler) Catalog(w http.ResponseWriter, _ *http.Request) {
	web.RespondOK(w, nil, h.svc.Catalog())
}

type BalanceResponse struct {
	Balance int `json:"balance"`
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	balance, err := h.svc.Balance(r.Context(), userID)
	if err != nil {
		web.RespondInternalServerError(w, err)
		return
	}

	web.RespondOK(w, nil, &BalanceResponse{Balance: balance})
}

type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	limit := defaultTxnLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			web.RespondBadRequest(w, err, message.InvalidInput, map[string]string{"limit": "must be a positive number"})
			return
		}
		limit = min(n, maxTxnLimit)
	}

	txns, err := h.svc.Transactions(r.Context(), userID, limit)
	if err != nil {
		web.RespondInternalServerError(w, err)
		return
	}
	if txns == nil {
		txns = []Transaction{}
	}

	web.RespondOK(w, nil, &TransactionsResponse{Transactions: txns})
}

type CheckoutRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[CheckoutRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	session, err := h.svc.Checkout(r.Context(), userID, req.ItemID)
	if err != nil {
		var statusErr *functions.StatusError
		switch {
		case errors.Is(err, ErrUnknownItem):
			web.RespondUnprocessableEntity(w, err, MsgUnknownItem, map[string]string{"item_id": "unknown item"})
		case errors.As(err, &statusErr), errors.Is(err, functions.ErrUnauthorized):
			web.RespondBadGateway(w, err, message.UpstreamFailed)
		default:
			web.RespondInternalServerError(w, err)
		}
		return
	}

	msg := MsgCheckoutCreated
	web.RespondCreated(w, &msg, session)
}

// Webhook reads the raw body since the signature covers its exact bytes.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			web.RespondRequestEntityTooLarge(w, err, message.InvalidInput, nil)
			return
		}
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	if err := h.svc.HandleWebhook(r.Context(), payload, r.Header.Get(HeaderSignature)); err != nil {
		switch {
		case errors.Is(err, ErrBadSignature):
			web.RespondUnauthorized(w, err, MsgInvalidSignature, nil)
		case errors.Is(err, ErrBadEvent):
			web.RespondBadRequest(w, err, message.InvalidInput, nil)
		case errors.Is(err, ErrUnknownItem):
			web.RespondUnprocessableEntity(w, err, MsgUnknownItem, nil)
		default:
			web.RespondInternalServerError(w, err)
		}
		return
	}

	msg := MsgWebhookAccepted
	web.RespondOK(w, &msg, &struct{}{})
}
