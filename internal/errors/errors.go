package errors

import (
	"errors"
	"fmt"
)

// Common error types for the taskmaster client
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")

	// ErrSignInAfterSignUp: the account was created but the follow-up sign in failed
	ErrSignInAfterSignUp = errors.New("account created but sign in failed")

	// Token errors
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrPartialTokenPair = errors.New("access and refresh tokens must be set together")

	// Remote service errors
	ErrTransport         = errors.New("transport failure")
	ErrMalformedResponse = errors.New("malformed response")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join combines errors; nil values are discarded
func Join(errs ...error) error {
	return errors.Join(errs...)
}
