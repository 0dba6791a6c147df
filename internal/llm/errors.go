package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrUnavailable means the service could not be reached
	ErrUnavailable = errors.New("inference service unavailable")

	// ErrTimeout means the call ran past its deadline
	ErrTimeout = errors.New("inference request timed out")

	// ErrMalformed means the response could not be decoded
	ErrMalformed = errors.New("malformed inference response")

	// ErrModelMissing means the requested model is not served
	ErrModelMissing = errors.New("model not available")

	// ErrNoCategory means the answer named no known category
	ErrNoCategory = errors.New("no recognized category in response")

	// ErrStatus matches any *StatusError
	ErrStatus = errors.New("unexpected inference status")
)

// StatusError is returned for non-200 responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inference API error (%d)", e.Code)
	}
	return fmt.Sprintf("inference API error (%d): %s", e.Code, e.Body)
}

// Is lets errors.Is(err, ErrStatus) match
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// transportError maps an error from the HTTP round trip onto the sentinel taxonomy
func transportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
