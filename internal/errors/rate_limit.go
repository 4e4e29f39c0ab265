package errors

import "fmt"

// RateLimitError represents a rate limit response from a retailer API.
type RateLimitError struct {
	Retailer string
	Message  string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %s", e.Retailer, e.Message)
}

// NewRateLimitError creates a new RateLimitError for the given retailer.
func NewRateLimitError(retailer, message string) *RateLimitError {
	return &RateLimitError{Retailer: retailer, Message: message}
}
