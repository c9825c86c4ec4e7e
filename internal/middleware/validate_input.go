package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
	"github.com/ferdiebergado/storyboard/internal/platform/validation"
)

// ValidateInput validates the params stored by DecodePayload. Field errors
// are returned to the client as a 422.
func ValidateInput[T any](validator validation.Validator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			params, err := web.ParamsFromContext[T](r.Context())
			if err != nil {
				web.RespondBadRequest(w, err, message.InvalidInput, nil)
				return
			}

			if errs := validator.ValidateStruct(params); errs != nil {
				web.RespondUnprocessableEntity(w, errors.New("invalid input"), message.InvalidInput, errs)
				return
			}

			slog.Debug("Input is valid.")
			next.ServeHTTP(w, r)
		})
	}
}
