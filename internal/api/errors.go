package api

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for API failure classification. Wrapped errors carry the
// server-provided detail; callers branch with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrDecode       = errors.New("decode error")
	ErrServer       = errors.New("server error")
	ErrTransport    = errors.New("transport error")
)

// classifyStatus maps an HTTP status code and response body to the error
// taxonomy shared across the CLI.
func classifyStatus(status int, body string) error {
	detail := strings.TrimSpace(body)
	if detail == "" {
		detail = "no response body"
	}
	switch status {
	case 400, 422:
		return fmt.Errorf("%w: %s", ErrValidation, detail)
	case 401, 403:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case 404:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case 429:
		return ErrRateLimited
	default:
		if status >= 500 {
			return fmt.Errorf("%w: status %d: %s", ErrServer, status, detail)
		}
		return fmt.Errorf("%w: unexpected status %d: %s", ErrTransport, status, detail)
	}
}

// PlanRestricted reports whether an unauthorized error indicates the feature
// is gated behind a paid plan rather than a bad credential.
func PlanRestricted(err error) bool {
	return errors.Is(err, ErrUnauthorized) && strings.Contains(err.Error(), "not available")
}
