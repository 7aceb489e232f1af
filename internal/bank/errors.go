package bank

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrUnavailable signals that the bank failed at the transport or server
// level often enough that the caller should treat the service as down rather
// than record "no match" for the question.
var ErrUnavailable = errors.New("question bank unavailable")

// StatusError is a non-2xx response from the bank.
type StatusError struct {
	Code      int
	Operation string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: bank returned HTTP %d", e.Operation, e.Code)
}

// IsAuthError reports whether the bank rejected the credential.
func IsAuthError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}

// isServerError reports whether the bank answered with a 5xx.
func isServerError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= http.StatusInternalServerError
}

// isTransient reports whether the error is a connection or timeout failure
// that a short retry might fix. Context cancellation is deliberate shutdown,
// never transient.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

// isServiceFailure reports whether the error should count toward the
// consecutive-failure threshold that declares the bank unavailable.
func isServiceFailure(err error) bool {
	return isTransient(err) || isServerError(err)
}
