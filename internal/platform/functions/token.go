package functions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
)

// TokenSource supplies the bearer token sent to the function gateway.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

const (
	ServiceRole = "service"
	// Audience is the audience of tokens accepted by the function gateway.
	Audience = "functions"
)

// SignerTokenSource mints short-lived service tokens and caches them until
// they are close to expiry or explicitly refreshed.
type SignerTokenSource struct {
	signer   jwt.Signer
	audience []string
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

var _ TokenSource = (*SignerTokenSource)(nil)

func NewSignerTokenSource(signer jwt.Signer, audience string, ttl time.Duration) *SignerTokenSource {
	return &SignerTokenSource{
		signer:   signer,
		audience: []string{audience},
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SignerTokenSource) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// renew when less than a tenth of the lifetime is left
	if s.token != "" && s.now().Add(s.ttl/10).Before(s.expires) {
		return s.token, nil
	}
	return s.mintLocked()
}

func (s *SignerTokenSource) Refresh(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mintLocked()
}

func (s *SignerTokenSource) mintLocked() (string, error) {
	token, err := s.signer.Sign(jwt.Claims{UserID: ServiceRole, Role: ServiceRole}, s.audience, s.ttl)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}

	s.token = token
	s.expires = s.now().Add(s.ttl)
	return token, nil
}

// StaticTokenSource always returns the same token. Refresh is a no-op.
type StaticTokenSource string

func (t StaticTokenSource) Token(context.Context) (string, error)   { return string(t), nil }
func (t StaticTokenSource) Refresh(context.Context) (string, error) { return string(t), nil }
