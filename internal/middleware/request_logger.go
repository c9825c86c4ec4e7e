package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// LogRequest writes one access log line per request. Server errors are
// logged at error level and client errors at warn.
func LogRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		writer := wrapWriter(w, r)
		next.ServeHTTP(writer, r)

		status := writer.Status()
		attrs := []slog.Attr{
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("route", r.Pattern),
			slog.String("url", r.URL.String()),
			slog.Int("status_code", status),
			slog.Int("bytes", writer.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("ip", clientIP(r)),
			slog.String("user_agent", r.UserAgent()),
		}
		if traceID := TraceIDFromRequest(r); traceID != "" {
			attrs = append(attrs, slog.String("trace_id", traceID))
		}

		slog.LogAttrs(context.WithoutCancel(r.Context()), levelFor(status), "request handled", attrs...)
	})
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// clientIP prefers the address reported by a reverse proxy.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
