package webhook

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when no webhook URL has been set.
	ErrNotConfigured = errors.New("webhook URL not configured")
	// ErrTimeout means the request was abandoned after the client timeout. The
	// automation backend usually keeps working after this happens.
	ErrTimeout = errors.New("webhook request timed out")
	// ErrMalformedResponse means the webhook claimed JSON but sent something else.
	ErrMalformedResponse = errors.New("malformed webhook response")
)

// StatusError is returned for non-2xx webhook responses.
type StatusError struct {
	Code    int
	Status  string
	Message string
	Body    any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("webhook returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("webhook returned status %d", e.Code)
}

// IsTimeout reports whether err is a client-side timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
