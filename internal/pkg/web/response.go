package web

import (
	"log/slog"
	"net/http"

	"github.com/ferdiebergado/gopherkit/http/response"
)

// OKResponse represents the structure of a JSON-encoded success response.
//
// It includes an optional message and optional data payload. The generic type
// parameter T allows OKResponse to carry arbitrary response data.
//
// The Data field is omitted from the response if it is nil.
type OKResponse[T any] struct {
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// ErrorResponse represents the structure of a JSON-encoded error response.
//
// It includes a general error message and, optionally, a map of field-level
// validation errors. The Errors field is omitted from the response if empty.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// OK writes a JSON-encoded success response to w with the provided HTTP status code.
//
// If msg is non-nil, its value is included in the response under the "message" field.
// If data is non-nil, it is included under the "data" field.
//
// The JSON response has the form:
//
//	{
//	  "message": "Story imported.",
//	  "data": {
//	    "id": "1",
//	    "title": "The Lighthouse"
//	  }
//	}
func OK[T any](w http.ResponseWriter, status int, msg *string, data *T) {
	payload := &OKResponse[*T]{}
	if msg != nil {
		payload.Message = *msg
	}

	if data != nil {
		payload.Data = data
	}

	response.JSON(w, status, payload)
}

// Fail writes a JSON-encoded error response to w with the provided HTTP status code.
//
// The reason is logged using slog at Error level with the key "reason" and is
// never sent to the client.
//
// The JSON response has the form:
//
//	{
//	  "message": "Invalid input.",
//	  "errors": {
//	    "email": "must be a valid email address"
//	  }
//	}
func Fail(w http.ResponseWriter, status int, reason error, msg string, errs map[string]string) {
	slog.Error("request failed", "status", status, "reason", reason)
	payload := &ErrorResponse{
		Message: msg,
		Errors:  errs,
	}
	response.JSON(w, status, payload)
}

func RespondOK[T any](w http.ResponseWriter, msg *string, data *T) {
	OK(w, http.StatusOK, msg, data)
}

func RespondCreated[T any](w http.ResponseWriter, msg *string, data *T) {
	OK(w, http.StatusCreated, msg, data)
}

func RespondAccepted[T any](w http.ResponseWriter, msg *string, data *T) {
	OK(w, http.StatusAccepted, msg, data)
}

func RespondBadRequest(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusBadRequest, reason, msg, errs)
}

func RespondUnauthorized(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusUnauthorized, reason, msg, errs)
}

func RespondPaymentRequired(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusPaymentRequired, reason, msg, errs)
}

func RespondForbidden(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusForbidden, reason, msg, errs)
}

func RespondNotFound(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusNotFound, reason, msg, errs)
}

func RespondRequestTimeout(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusRequestTimeout, reason, msg, errs)
}

func RespondConflict(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusConflict, reason, msg, errs)
}

func RespondRequestEntityTooLarge(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusRequestEntityTooLarge, reason, msg, errs)
}

func RespondUnsupportedMediaType(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusUnsupportedMediaType, reason, msg, errs)
}

func RespondUnprocessableEntity(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusUnprocessableEntity, reason, msg, errs)
}

func RespondTooManyRequests(w http.ResponseWriter, reason error, msg string, errs map[string]string) {
	Fail(w, http.StatusTooManyRequests, reason, msg, errs)
}

func RespondInternalServerError(w http.ResponseWriter, reason error) {
	Fail(w, http.StatusInternalServerError, reason, "An unexpected error occurred.", nil)
}

func RespondBadGateway(w http.ResponseWriter, reason error, msg string) {
	Fail(w, http.StatusBadGateway, reason, msg, nil)
}
