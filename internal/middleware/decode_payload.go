package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

const msgUnknownField = "Unknown field in payload."

// DecodePayload decodes a single JSON object of type T from the body into
// the request context. An empty body yields the zero value, leaving
// required fields to ValidateInput.
func DecodePayload[T any](bodySize int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, bodySize)
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()

			var params T
			if err := dec.Decode(&params); err != nil && !errors.Is(err, io.EOF) {
				respondDecodeError(w, err)
				return
			}

			if dec.More() {
				web.RespondBadRequest(w, errors.New("trailing data after json object"), message.InvalidInput, nil)
				return
			}
			if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
				respondDecodeError(w, err)
				return
			}

			slog.Debug("Payload decoded.", "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(web.NewContextWithParams(r.Context(), params)))
		})
	}
}

func respondDecodeError(w http.ResponseWriter, err error) {
	var (
		tooLarge *http.MaxBytesError
		typeErr  *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &tooLarge):
		web.RespondRequestEntityTooLarge(w, err, message.InvalidInput, nil)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		web.RespondUnprocessableEntity(w, err, message.InvalidInput,
			map[string]string{typeErr.Field: typeErr.Field + " must be of type " + typeErr.Type.String()})
	default:
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			web.RespondUnprocessableEntity(w, err, msgUnknownField, map[string]string{"field": strings.Trim(field, `"`)})
			return
		}
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
	}
}
