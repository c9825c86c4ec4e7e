package middleware

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

// CheckContentType rejects request bodies that are not JSON. Requests
// without a body pass through.
func CheckContentType(next http.Handler) http.Handler {
	return CheckContentTypeExcept()(next)
}

// CheckContentTypeExcept is CheckContentType with paths under any of the
// given prefixes left untouched, for routes that relay bodies verbatim.
func CheckContentTypeExcept(prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			for _, prefix := range prefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			slog.Debug("Checking Content-Type...")
			contentType := r.Header.Get(web.HeaderContentType)
			if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != web.MimeJSON {
				web.RespondUnsupportedMediaType(w, fmt.Errorf("invalid content-type: %s", contentType), message.InvalidInput, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
