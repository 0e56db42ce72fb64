package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNonRetryable marks processing failures that redelivery cannot fix.
	ErrNonRetryable = errors.New("non-retryable error")

	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrNotReady            = errors.New("video not ready")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUnauthenticated     = errors.New("unauthenticated")

	ErrSelfSubscription  = fmt.Errorf("%w: cannot subscribe to your own channel", ErrConflict)
	ErrAlreadySubscribed = fmt.Errorf("%w: already subscribed to this channel", ErrConflict)
	ErrNotSubscribed     = fmt.Errorf("%w: not subscribed to this channel", ErrConflict)
	ErrChannelExists     = fmt.Errorf("%w: user already has a channel", ErrConflict)
	ErrEmailTaken        = fmt.Errorf("%w: email is already registered", ErrConflict)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

func forbidden(action string) error {
	return fmt.Errorf("%w: you can only %s", ErrForbidden, action)
}

// Message returns the user facing part of a service error.
func Message(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict, ErrNotReady, ErrUpstreamUnavailable, ErrUnauthenticated} {
		if errors.Is(err, sentinel) {
			prefix := sentinel.Error() + ": "
			if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
				return msg[len(prefix):]
			}
		}
	}
	return msg
}
