package llm

import (
	"context"
	"errors"
	"strings"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	Quality     bool   // Prefer the provider's larger model (final answers vs classification)
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithQuality() Option {
	return func(o *Options) {
		o.Quality = true
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ErrRateLimited marks quota/rate-limit-class provider failures. The fallback
// chain deactivates the provider for the rest of the process and moves on;
// every other failure class surfaces immediately.
var ErrRateLimited = errors.New("llm: provider rate limited")

var rateLimitMarkers = []string{
	"429",
	"quota",
	"rate_limit",
	"rate limit",
	"resource_exhausted",
	"too many requests",
	"limit exceeded",
}

// IsRateLimit reports whether err looks like a quota or rate-limit failure.
// Providers wrap ErrRateLimited where the status code makes it explicit; the
// substring match catches providers that only expose a message.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
