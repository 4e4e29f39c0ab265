package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthenticationErrorWrapping(t *testing.T) {
	cause := errors.New("401 unauthorized")
	err := NewAuthenticationError("Libro FM", cause)

	if !IsAuthenticationError(err) {
		t.Error("expected IsAuthenticationError to be true")
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}

	wrapped := fmt.Errorf("run failed: %w", err)
	if !IsAuthenticationError(wrapped) {
		t.Error("expected detection through wrapping")
	}
}

func TestAuthenticationErrorWithoutCause(t *testing.T) {
	err := NewAuthenticationError("Chirp", nil)
	if err.Error() != "authentication failed for Chirp" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("Chirp", "429 too many requests")
	if err.Error() != "Chirp rate limited: 429 too many requests" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if IsAuthenticationError(err) {
		t.Error("rate limit errors are not auth errors")
	}
}
