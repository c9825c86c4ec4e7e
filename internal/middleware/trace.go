package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ferdiebergado/storyboard/internal/middleware"

// Trace starts a server span named after the matched route, continuing a
// trace passed in by the caller.
func Trace(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		name := r.Pattern
		if name == "" {
			name = r.Method
		}
		ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("request.id", RequestIDFromContext(ctx)),
			))
		defer span.End()

		writer := wrapWriter(w, r)
		req := r.WithContext(ctx)
		next.ServeHTTP(writer, req)

		// the mux fills in the pattern when Trace wraps the whole router
		if name == r.Method && req.Pattern != "" {
			span.SetName(req.Pattern)
		}

		status := writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

// TraceIDFromRequest returns the id of the trace the request is part of, or
// an empty string when tracing is off.
func TraceIDFromRequest(r *http.Request) string {
	sc := trace.SpanFromContext(r.Context()).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

func wrapWriter(w http.ResponseWriter, r *http.Request) *SafeResponseWriter {
	if sw, ok := w.(*SafeResponseWriter); ok {
		return sw
	}
	return NewSafeResponseWriter(r.Context(), w)
}
