package fallback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inventory-agent-be/pkg/llm"
)

// ErrProvidersExhausted is returned when every configured provider is either
// deactivated or failed with a rate-limit-class error for this call.
var ErrProvidersExhausted = errors.New("fallback: all llm providers exhausted")

// Handle is one configured provider in priority order.
type Handle struct {
	Name     string
	Provider llm.LLMProvider
}

type entry struct {
	name     string
	provider llm.LLMProvider
	active   bool
}

// Chain is an LLMProvider that tries configured providers in order. A
// provider that fails with a rate-limit-class error is marked inactive for
// the rest of the process and the next provider is tried for the same call;
// any other failure surfaces immediately. Activation state lives on the
// chain, not in a global, so tests can build and reset their own chains.
type Chain struct {
	mu      sync.Mutex
	entries []*entry
}

var _ llm.LLMProvider = &Chain{}

func NewChain(handles ...Handle) (*Chain, error) {
	if len(handles) == 0 {
		return nil, errors.New("fallback: at least one provider is required")
	}
	entries := make([]*entry, len(handles))
	for i, h := range handles {
		entries[i] = &entry{
			name:     h.Name,
			provider: h.Provider,
			active:   true,
		}
	}
	return &Chain{entries: entries}, nil
}

func (c *Chain) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	var lastErr error

	for {
		e := c.nextActive()
		if e == nil {
			break
		}

		response, err := e.provider.Chat(ctx, history, opts...)
		if err == nil {
			return response, nil
		}

		if !llm.IsRateLimit(err) {
			// Not a quota problem: trying another provider would hide a
			// real failure (bad request, network partition, cancellation).
			return "", fmt.Errorf("provider %s: %w", e.name, err)
		}

		lastErr = err
		c.deactivate(e)
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: last error: %v", ErrProvidersExhausted, lastErr)
	}
	return "", ErrProvidersExhausted
}

func (c *Chain) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// Active returns the names of providers still eligible, in priority order.
func (c *Chain) Active() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for _, e := range c.entries {
		if e.active {
			names = append(names, e.name)
		}
	}
	return names
}

// Reset reactivates every provider. Quota windows are hours long, so the
// process normally restarts before this matters; tests use it directly.
func (c *Chain) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		e.active = true
	}
}

func (c *Chain) nextActive() *entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.active {
			return e
		}
	}
	return nil
}

func (c *Chain) deactivate(target *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target.active = false
}
