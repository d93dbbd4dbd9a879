package portal

import (
	"errors"
	"fmt"
)

var (
	// ErrLoginFailed means the portal rejected the credentials or the session expired.
	ErrLoginFailed = errors.New("Login failed. Check credentials.")
	// ErrBreakerOpen is returned without contacting the portal while it is considered down.
	ErrBreakerOpen = errors.New("portal circuit breaker is open; fast-fail")
)

// StatusError is a non-2xx answer from the portal.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("portal returned %d for %s", e.Code, e.URL)
}
