package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped sentinel", fmt.Errorf("groq: %w", ErrRateLimited), true},
		{"status 429 in message", errors.New("unexpected status 429"), true},
		{"quota message", errors.New("Quota exceeded for model"), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"too many requests", errors.New("Too Many Requests"), true},
		{"plain failure", errors.New("connection refused"), false},
		{"bad request", errors.New("status 400: invalid payload"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimit(tt.err); got != tt.want {
				t.Errorf("IsRateLimit(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
