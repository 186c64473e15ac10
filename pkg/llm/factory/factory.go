package factory

import (
	"fmt"
	"strings"

	"inventory-agent-be/pkg/llm"
	"inventory-agent-be/pkg/llm/fallback"
	"inventory-agent-be/pkg/llm/gemini"
	"inventory-agent-be/pkg/llm/groq"
	"inventory-agent-be/pkg/llm/ollama"
)

// Config carries what each provider needs to be constructed. Providers whose
// credentials are missing are skipped instead of failing the whole chain.
type Config struct {
	ProviderOrder string // comma-separated, e.g. "groq,gemini"
	GroqAPIKey    string
	GeminiAPIKey  string
	OllamaBaseURL string
	OllamaModel   string
}

// NewLLMProvider builds the ordered fallback chain from config. The first
// provider in the order is the primary; the rest only see traffic after a
// quota failure upstream.
func NewLLMProvider(cfg Config) (*fallback.Chain, error) {
	var handles []fallback.Handle

	for _, name := range strings.Split(cfg.ProviderOrder, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		switch name {
		case "":
			continue
		case "groq":
			if cfg.GroqAPIKey == "" {
				continue
			}
			handles = append(handles, fallback.Handle{Name: "groq", Provider: groq.NewGroqProvider(cfg.GroqAPIKey)})
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				continue
			}
			handles = append(handles, fallback.Handle{Name: "gemini", Provider: gemini.NewGeminiProvider(cfg.GeminiAPIKey)})
		case "ollama":
			baseURL := cfg.OllamaBaseURL
			if baseURL == "" {
				baseURL = "http://localhost:11434" // Default
			}
			handles = append(handles, fallback.Handle{Name: "ollama", Provider: ollama.NewOllamaProvider(baseURL, cfg.OllamaModel)})
		default:
			return nil, fmt.Errorf("unsupported LLM provider: %s", name)
		}
	}

	if len(handles) == 0 {
		return nil, fmt.Errorf("no LLM providers configured: need at least GROQ_API_KEY, GOOGLE_GEMINI_API_KEY or an ollama entry")
	}

	return fallback.NewChain(handles...)
}

// Ensure the chain satisfies the provider contract at compile time.
var _ llm.LLMProvider = (*fallback.Chain)(nil)
