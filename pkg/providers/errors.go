package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited matches any error caused by a provider throttling us.
	ErrRateLimited = errors.New("provider rate limit exceeded")
	// ErrNotFound matches provider responses that explicitly report no such resource.
	ErrNotFound = errors.New("provider resource not found")
	// ErrMissingCredentials is returned before any call is made when a provider
	// requires a key that is not configured.
	ErrMissingCredentials = errors.New("provider credentials not configured")
)

// StatusError is returned for any non-2xx provider response.
type StatusError struct {
	Provider    string
	StatusCode  int
	Status      string
	RateLimited bool
}

func (e *StatusError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("%s: rate limited (%s)", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %s", e.Provider, e.Status)
}

// Is lets errors.Is classify a StatusError as ErrRateLimited or ErrNotFound.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.RateLimited
	case ErrNotFound:
		return e.StatusCode == 404
	}
	return false
}

// IsRateLimited reports whether err was caused by provider throttling.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
