package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthenticated covers a missing, malformed, expired or unknown-subject access token.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when the principal lacks the required role.
	ErrForbidden = errors.New("access forbidden")
	// ErrUnverified is a Forbidden outcome for principals that have not verified their email.
	ErrUnverified = fmt.Errorf("%w: email verification required", ErrForbidden)

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrThrottled          = errors.New("too many requests")
	ErrSignupDisabled     = errors.New("registration disabled")
	ErrInvalidInput       = errors.New("invalid input")
)

// ThrottledError is returned when a rate-limited action is attempted inside
// its cool-down window. It matches ErrThrottled with errors.Is.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many requests: retry in %s", e.RetryAfter)
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}

// RetryAfterSeconds rounds the remaining window up to whole seconds, never below one.
func (e *ThrottledError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
