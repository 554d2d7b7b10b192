package delivery

import (
	"fmt"

	"github.com/sgrm/scheduler/internal/platform/httpx"
)

// Domain errors for deliveries.
var (
	// ErrNotFound indicates the remote API does not know the delivery.
	ErrNotFound = fmt.Errorf("delivery %w", httpx.ErrNotFound)
	// ErrNotPersisted occurs when an operation needs an identifier.
	ErrNotPersisted = fmt.Errorf("delivery has no identifier: %w", httpx.ErrValidation)
	// ErrInvalid wraps validation failures.
	ErrInvalid = fmt.Errorf("invalid delivery: %w", httpx.ErrValidation)
	// ErrAPIUnavailable indicates the remote API could not be reached.
	ErrAPIUnavailable = fmt.Errorf("delivery api: %w", httpx.ErrUnavailable)
)

// StatusError is returned when the remote API answers outside 2xx.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("delivery api %s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("delivery api %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses and
// httpx.ErrUnavailable match 5xx ones.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound, httpx.ErrNotFound:
		return e.Code == 404
	case httpx.ErrUnavailable:
		return e.Code >= 500
	}
	return false
}
