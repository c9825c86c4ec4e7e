package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ferdiebergado/storyboard/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 4 << 10

// Invoker calls a named function on the gateway and decodes its JSON
// response into out.
type Invoker interface {
	Invoke(ctx context.Context, name string, payload, out any, opts ...InvokeOption) error
}

// RetryPolicy bounds the exponential backoff applied to 429 and 5xx answers.
type RetryPolicy struct {
	MaxRetries      uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Jitter          float64
}

func PolicyFromConfig(cfg *config.Functions) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.InitialInterval.Duration,
		MaxInterval:     cfg.MaxInterval.Duration,
		Multiplier:      cfg.Multiplier,
		Jitter:          cfg.Jitter,
	}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.Reset()
	return b
}

type InvokeOption func(h http.Header)

// WithHeader adds a request header to every attempt of an invocation.
func WithHeader(key, val string) InvokeOption {
	return func(h http.Header) {
		h.Set(key, val)
	}
}

// Client talks to the serverless function gateway.
//
// Errors are classified by status: the first 401 of an invocation refreshes
// the token and retries immediately, 402 stops with ErrInsufficientCredits, 429 and 5xx are retried
// with exponential backoff and jitter, anything else is returned as a
// *StatusError.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	policy  RetryPolicy
	tracer  trace.Tracer
}

var _ Invoker = (*Client)(nil)

func NewClient(baseURL string, tokens TokenSource, policy RetryPolicy, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		policy:  policy,
		tracer:  otel.Tracer("github.com/ferdiebergado/storyboard/internal/platform/functions"),
	}
}

func (c *Client) Invoke(ctx context.Context, name string, payload, out any, opts ...InvokeOption) error {
	ctx, span := c.tracer.Start(ctx, "functions.invoke", trace.WithAttributes(attribute.String("function.name", name)))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", name, err)
	}

	headers := make(http.Header)
	for _, opt := range opts {
		opt(headers)
	}

	attempt := 0
	refreshed := false
	op := func() (struct{}, error) {
		attempt++
		err := c.attempt(ctx, name, attempt, body, headers, out, &refreshed)
		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, ErrInsufficientCredits), errors.Is(err, ErrUnauthorized):
			return struct{}{}, backoff.Permanent(err)
		case IsRetryable(err):
			return struct{}{}, err
		case ctx.Err() != nil:
			return struct{}{}, backoff.Permanent(err)
		default:
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return struct{}{}, backoff.Permanent(err)
			}
			// transport failures are treated like a 5xx
			return struct{}{}, err
		}
	}

	notify := func(err error, next time.Duration) {
		slog.Warn("function call failed, retrying", "function", name, "attempt", attempt, "next_in", next, "reason", err)
	}

	_, err = backoff.Retry(ctx, op,
		backoff.WithBackOff(c.policy.backOff()),
		backoff.WithMaxTries(c.policy.MaxRetries+1),
		backoff.WithNotify(notify),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// attempt sends one request in its own span. The first 401 of an
// invocation refreshes the token and resends; any later 401 is final.
func (c *Client) attempt(ctx context.Context, name string, n int, body []byte, headers http.Header, out any, refreshed *bool) (err error) {
	ctx, span := c.tracer.Start(ctx, "functions.attempt", trace.WithAttributes(
		attribute.String("function.name", name),
		attribute.Int("attempt", n),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: get token: %v", ErrUnauthorized, err)
	}

	err = c.send(ctx, name, body, headers, token, out)
	if !errors.Is(err, ErrUnauthorized) || *refreshed {
		return err
	}

	slog.Info("function token rejected, refreshing", "function", name)
	*refreshed = true
	span.AddEvent("token refreshed")
	token, refreshErr := c.tokens.Refresh(ctx)
	if refreshErr != nil {
		return fmt.Errorf("%w: refresh token: %v", ErrUnauthorized, refreshErr)
	}
	return c.send(ctx, name, body, headers, token, out)
}

func (c *Client) send(ctx context.Context, name string, body []byte, headers http.Header, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request for %s: %w", name, err)
	}

	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", name, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		drain(res.Body)
		return ErrUnauthorized
	case res.StatusCode == http.StatusPaymentRequired:
		drain(res.Body)
		return ErrInsufficientCredits
	case res.StatusCode < 200 || res.StatusCode > 299:
		return &StatusError{Function: name, Status: res.StatusCode, Message: errorMessage(res.Body)}
	}

	if out == nil {
		drain(res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &StatusError{Function: name, Status: http.StatusBadGateway, Message: "decode response: " + err.Error()}
	}
	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from an error
// body, falling back to the raw text.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
}
