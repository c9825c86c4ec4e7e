package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

// ContextGuard stops requests whose context already ended before reaching
// the handler, such as a client that disconnected while queued.
func ContextGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.Context().Err()
		if err == nil {
			next.ServeHTTP(w, r)
			return
		}

		slog.Warn("request abandoned before handling",
			"request_id", RequestIDFromContext(r.Context()),
			"deadline_exceeded", errors.Is(err, context.DeadlineExceeded),
		)
		web.RespondRequestTimeout(w, err, "Request cancelled or timeout", nil)
	})
}
