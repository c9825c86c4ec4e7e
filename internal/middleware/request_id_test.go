package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/middleware"
	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	existing := uuid.NewString()

	tests := []struct {
		name, sent string
		reuse      bool
	}{
		{"generates an id", "", false},
		{"reuses a valid id", existing, true},
		{"replaces a malformed id", "not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var fromCtx string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromCtx = middleware.RequestIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.sent != "" {
				req.Header.Set(middleware.HeaderRequestID, tt.sent)
			}
			rec := httptest.NewRecorder()
			middleware.RequestID(handler).ServeHTTP(rec, req)

			got := rec.Header().Get(middleware.HeaderRequestID)
			if got != fromCtx {
				t.Errorf("header id = %q, context id = %q", got, fromCtx)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("request id %q is not a uuid: %v", got, err)
			}
			if tt.reuse && got != tt.sent {
				t.Errorf("request id = %q, want: %q", got, tt.sent)
			}
			if !tt.reuse && got == tt.sent {
				t.Errorf("request id = %q, want a new one", got)
			}
		})
	}
}
