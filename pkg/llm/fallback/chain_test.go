package fallback

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"inventory-agent-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	response string
	err      error
	calls    int
}

func (s *stubProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func rateLimited() error {
	return fmt.Errorf("upstream said no: %w", llm.ErrRateLimited)
}

func TestNewChainRequiresProviders(t *testing.T) {
	_, err := NewChain()
	assert.Error(t, err)
}

func TestChatUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubProvider{response: "ok"}
	secondary := &stubProvider{response: "never"}
	chain, err := NewChain(
		Handle{Name: "groq", Provider: primary},
		Handle{Name: "gemini", Provider: secondary},
	)
	assert.NoError(t, err)

	got, err := chain.Chat(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 0, secondary.calls)
}

func TestChatRateLimitFallsThroughAndDeactivates(t *testing.T) {
	primary := &stubProvider{err: rateLimited()}
	secondary := &stubProvider{response: "from secondary"}
	chain, _ := NewChain(
		Handle{Name: "groq", Provider: primary},
		Handle{Name: "gemini", Provider: secondary},
	)

	got, err := chain.Chat(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "from secondary", got)

	// The quota-limited primary stays out for subsequent calls.
	_, err = chain.Chat(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 2, secondary.calls)
	assert.Equal(t, []string{"gemini"}, chain.Active())
}

func TestChatNonRateLimitErrorSurfacesImmediately(t *testing.T) {
	primary := &stubProvider{err: errors.New("malformed request")}
	secondary := &stubProvider{response: "never"}
	chain, _ := NewChain(
		Handle{Name: "groq", Provider: primary},
		Handle{Name: "gemini", Provider: secondary},
	)

	_, err := chain.Chat(context.Background(), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "groq")
	assert.Equal(t, 0, secondary.calls)

	// A hard failure does not deactivate: the next call retries the primary.
	assert.Equal(t, []string{"groq", "gemini"}, chain.Active())
}

func TestChatExhaustion(t *testing.T) {
	chain, _ := NewChain(
		Handle{Name: "groq", Provider: &stubProvider{err: rateLimited()}},
		Handle{Name: "gemini", Provider: &stubProvider{err: rateLimited()}},
	)

	_, err := chain.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrProvidersExhausted)
	assert.Empty(t, chain.Active())

	// Subsequent calls fail fast without touching any provider.
	_, err = chain.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrProvidersExhausted)
}

func TestReset(t *testing.T) {
	primary := &stubProvider{err: rateLimited()}
	chain, _ := NewChain(
		Handle{Name: "groq", Provider: primary},
		Handle{Name: "gemini", Provider: &stubProvider{response: "ok"}},
	)

	_, err := chain.Chat(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"gemini"}, chain.Active())

	chain.Reset()
	assert.Equal(t, []string{"groq", "gemini"}, chain.Active())
}
