package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal command line
var (
	// Session errors
	ErrNotSignedIn      = errors.New("not signed in")
	ErrSessionCleared   = errors.New("stored session is no longer valid")
	ErrUnsupportedStore = errors.New("unsupported session store")

	// Flow errors
	ErrLoginFailed          = errors.New("login failed")
	ErrPasswordChangeFailed = errors.New("password change failed")
	ErrInputClosed          = errors.New("input closed")
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
