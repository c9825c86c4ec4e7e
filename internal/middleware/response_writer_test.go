package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/middleware"
)

func TestSafeResponseWriter_WriteHeaderOnce(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := middleware.NewSafeResponseWriter(context.Background(), rec)

	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusInternalServerError)
	n, err := w.Write([]byte("done"))
	if err != nil {
		t.Fatalf("w.Write returned an error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("rec.Code = %d, want: %d", rec.Code, http.StatusCreated)
	}
	if w.Status() != http.StatusCreated {
		t.Errorf("w.Status() = %d, want: %d", w.Status(), http.StatusCreated)
	}
	if n != 4 || w.BytesWritten() != 4 {
		t.Errorf("bytes written = %d/%d, want: 4", n, w.BytesWritten())
	}
}

func TestSafeResponseWriter_DropsWritesAfterCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	w := middleware.NewSafeResponseWriter(ctx, rec)
	cancel()

	if _, err := w.Write([]byte("late")); err != nil {
		t.Fatalf("w.Write returned an error: %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("rec.Body.Len() = %d, want: 0", rec.Body.Len())
	}
}

func TestSafeResponseWriter_Flush(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := middleware.NewSafeResponseWriter(context.Background(), rec)

	var flusher http.Flusher = w
	flusher.Flush()

	if !rec.Flushed {
		t.Error("rec.Flushed = false, want: true")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("rec.Code = %d, want: %d", rec.Code, http.StatusOK)
	}
}
