package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/security"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongRole    = errors.New("role not allowed")
)

// VerifyToken verifies the token in the url query string. It guards the
// links sent by email.
func VerifyToken(signer jwt.Signer, audience string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.URL.Query().Get("token")
			if token == "" {
				web.RespondUnauthorized(w, ErrInvalidToken, message.InvalidUser, nil)
				return
			}

			claims, err := verify(signer, token, audience)
			if err != nil {
				web.RespondUnauthorized(w, err, message.InvalidUser, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), claims)))
		})
	}
}

// RequireToken authenticates the request with the bearer access token.
func RequireToken(signer jwt.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slog.Debug("Verifying access token...")

			token, err := security.ExtractBearerToken(r)
			if err != nil || token == "" {
				web.RespondUnauthorized(w, err, message.InvalidUser, nil)
				return
			}

			claims, err := verify(signer, token, AudienceAccess)
			if err != nil {
				web.RespondUnauthorized(w, err, message.InvalidUser, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), claims)))
		})
	}
}

// RequireRole only lets through callers with the given role. It must run
// after RequireToken.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := UserFromContext(r.Context()); err != nil {
				web.RespondUnauthorized(w, err, message.InvalidUser, nil)
				return
			}

			if got := RoleFromContext(r.Context()); got != role {
				web.RespondForbidden(w, fmt.Errorf("%w: %q", ErrWrongRole, got), message.Forbidden, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func verify(signer jwt.Signer, token, audience string) (*jwt.Claims, error) {
	claims, err := signer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !claims.HasAudience(audience) {
		return nil, fmt.Errorf("%w: audience %v, want %s", ErrInvalidToken, claims.Audience, audience)
	}

	return claims, nil
}
