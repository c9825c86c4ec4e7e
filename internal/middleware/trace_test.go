package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Not parallel: installs the global tracer provider.
func TestTrace(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var traceID string
	mux := http.NewServeMux()
	mux.Handle("POST /scenes/{id}/regenerate", middleware.Trace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = middleware.TraceIDFromRequest(r)
		w.WriteHeader(http.StatusBadGateway)
	})))

	req := httptest.NewRequest(http.MethodPost, "/scenes/s1/regenerate", http.NoBody)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want: 1", len(spans))
	}
	span := spans[0]

	if got, want := span.Name(), "POST /scenes/{id}/regenerate"; got != want {
		t.Errorf("span.Name() = %q, want: %q", got, want)
	}
	if span.Status().Code != codes.Error {
		t.Errorf("span.Status().Code = %v, want: %v", span.Status().Code, codes.Error)
	}
	if traceID == "" || traceID != span.SpanContext().TraceID().String() {
		t.Errorf("TraceIDFromRequest = %q, want: %q", traceID, span.SpanContext().TraceID())
	}

	want := attribute.Int("http.response.status_code", http.StatusBadGateway)
	var found bool
	for _, a := range span.Attributes() {
		if a == want {
			found = true
		}
	}
	if !found {
		t.Errorf("span.Attributes() = %v, want it to include %v", span.Attributes(), want)
	}
}

// Not parallel: installs the global tracer provider.
func TestTrace_WrappingMux(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stories/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stories/s1", http.NoBody)
	middleware.Trace(mux).ServeHTTP(httptest.NewRecorder(), req)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want: 1", len(spans))
	}
	if got, want := spans[0].Name(), "GET /stories/{id}"; got != want {
		t.Errorf("span.Name() = %q, want: %q", got, want)
	}
}

func TestTraceIDFromRequest_NoSpan(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if got := middleware.TraceIDFromRequest(req); got != "" {
		t.Errorf("TraceIDFromRequest() = %q, want empty", got)
	}
}
