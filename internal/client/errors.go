package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx backend response. Detail carries the backend's
// human-readable message when one was returned.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Detail, e.Status)
}

// IsUnauthorized reports whether err is a backend 401. Callers seeing
// this on a protected call should downgrade the session to anonymous;
// the transport has already spent its one refresh-and-retry.
func IsUnauthorized(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Status == http.StatusUnauthorized
}

// IsConflict reports whether err is a backend 409 (e.g. registering an
// email that already exists).
func IsConflict(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Status == http.StatusConflict
}
