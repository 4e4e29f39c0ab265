package errors

import (
	"errors"
	"fmt"
)

// AuthenticationError represents a failed retailer login. The retailer
// in question is skipped for the run; other retailers still proceed.
type AuthenticationError struct {
	Retailer string
	Err      error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed for %s: %v", e.Retailer, e.Err)
	}
	return fmt.Sprintf("authentication failed for %s", e.Retailer)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NewAuthenticationError creates an AuthenticationError for the given retailer.
func NewAuthenticationError(retailer string, err error) *AuthenticationError {
	return &AuthenticationError{Retailer: retailer, Err: err}
}

// IsAuthenticationError reports whether err is an AuthenticationError (even when wrapped).
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
