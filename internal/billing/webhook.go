package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadSignature = errors.New("billing: webhook signature mismatch")
	ErrBadEvent     = errors.New("billing: malformed webhook event")
)

const (
	HeaderSignature = "X-Signature"
	signaturePrefix = "sha256="

	EventCheckoutCompleted = "checkout.completed"
	EventInvoicePaid       = "invoice.paid"
)

type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		UserID string `json:"user_id"`
		ItemID string `json:"item_id"`
	} `json:"data"`
}

// Sign returns the signature header value for payload.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a "sha256=<hex>" HMAC of payload.
func VerifySignature(secret, payload []byte, signature string) error {
	if len(secret) == 0 {
		return fmt.Errorf("%w: no webhook secret configured", ErrBadSignature)
	}

	got, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}

func parseEvent(payload []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadEvent, err)
	}
	if evt.ID == "" || evt.Type == "" {
		return nil, fmt.Errorf("%w: missing id or type", ErrBadEvent)
	}
	return &evt, nil
}
