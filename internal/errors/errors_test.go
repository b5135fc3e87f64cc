package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{
			name:     "direct missing token error",
			err:      ErrMissingToken,
			sentinel: ErrMissingToken,
			want:     true,
		},
		{
			name:     "wrapped invalid token error",
			err:      fmt.Errorf("failed to authenticate: %w", ErrInvalidToken),
			sentinel: ErrInvalidToken,
			want:     true,
		},
		{
			name:     "different error type",
			err:      ErrRepoNotFound,
			sentinel: ErrInvalidToken,
			want:     false,
		},
		{
			name:     "retries exhausted wrapping a network error",
			err:      fmt.Errorf("%w after 7 attempts: %w", ErrRetriesExhausted, ErrNetworkFailure),
			sentinel: ErrNetworkFailure,
			want:     true,
		},
		{
			name:     "nil error",
			err:      nil,
			sentinel: ErrInvalidToken,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.sentinel)
			if got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.sentinel, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrMissingToken, "github token not configured"},
		{ErrInvalidToken, "invalid github token"},
		{ErrRepoNotFound, "repository not found"},
		{ErrNetworkFailure, "network connection failed"},
		{ErrRateLimit, "github rate limit exceeded"},
		{ErrRetriesExhausted, "retry attempts exhausted"},
		{ErrMalformedResponse, "malformed api response"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
