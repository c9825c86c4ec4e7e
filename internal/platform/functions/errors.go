package functions

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized        = errors.New("functions: unauthorized")
	ErrInsufficientCredits = errors.New("functions: insufficient credits")
)

// StatusError is returned when a function answers with a non-2xx status
// that is not handled by a sentinel error.
type StatusError struct {
	Function string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("functions: %s returned %d: %s", e.Function, e.Status, e.Message)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// IsRetryable reports whether err is a retryable StatusError.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Retryable()
}
