package middleware

import (
	"net/http"
	"slices"
	"strings"
)

const (
	HeaderAllowOrigin   = "Access-Control-Allow-Origin"
	HeaderAllowMethods  = "Access-Control-Allow-Methods"
	HeaderAllowHeaders  = "Access-Control-Allow-Headers"
	HeaderAllowCreds    = "Access-Control-Allow-Credentials"
	HeaderExposeHeaders = "Access-Control-Expose-Headers"
	HeaderMaxAge        = "Access-Control-Max-Age"

	AllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	AllowedHeaders = "Content-Type, Authorization, X-CSRF-Token, X-Request-ID, Last-Event-ID"
	// ExposedHeaders lets the web client read the export file name.
	ExposedHeaders = "Content-Disposition, X-Request-ID"

	preflightMaxAge = "600"
)

// CORS allows credentialed cross-origin requests from the web clients.
// allowedOrigins is a comma separated list of exact origins.
func CORS(allowedOrigins string) func(http.Handler) http.Handler {
	var origins []string
	for o := range strings.SplitSeq(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			allowed := origin != "" && slices.Contains(origins, origin)
			if allowed {
				h.Set(HeaderAllowOrigin, origin)
				h.Set(HeaderAllowCreds, "true")
				h.Set(HeaderExposeHeaders, ExposedHeaders)
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if allowed {
				h.Set(HeaderAllowMethods, AllowedMethods)
				h.Set(HeaderAllowHeaders, AllowedHeaders)
				h.Set(HeaderMaxAge, preflightMaxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
