package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/security"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

// CSRFGuard implements the double-submit cookie pattern. Safe methods get a
// signed token cookie, echoed in a response header for the client. Unsafe
// methods must send the same token back in the header.
func CSRFGuard(cfg *config.CSRF, csrfBaker security.Baker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if err != nil || cookie.Value == "" || csrfBaker.Check(cookie) != nil {
					cookie, err = csrfBaker.Bake()
					if err != nil {
						web.RespondInternalServerError(w, fmt.Errorf("bake csrf cookie: %w", err))
						return
					}
					http.SetCookie(w, cookie)
				}
				w.Header().Set(cfg.HeaderName, cookie.Value)
				next.ServeHTTP(w, r)
				return
			}

			if err != nil || cookie.Value == "" {
				web.RespondForbidden(w, errors.New("csrf cookie missing"), message.Forbidden, nil)
				return
			}

			sent := r.Header.Get(cfg.HeaderName)
			if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(sent)) == 0 {
				web.RespondForbidden(w, errors.New("csrf token from cookie and header did not match"), message.Forbidden, nil)
				return
			}

			if err := csrfBaker.Check(cookie); err != nil {
				web.RespondForbidden(w, fmt.Errorf("check csrf cookie: %w", err), message.Forbidden, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
