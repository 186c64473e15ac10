package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"inventory-agent-be/pkg/llm"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider talks to Groq's OpenAI-compatible chat completions API.
// It keeps two models: a fast one for classification-style calls and a
// larger one for final answers (selected via llm.WithQuality).
type GroqProvider struct {
	BaseURL      string
	APIKey       string
	FastModel    string
	QualityModel string
	Client       *http.Client
}

var _ llm.LLMProvider = &GroqProvider{}

func NewGroqProvider(apiKey string) *GroqProvider {
	return &GroqProvider{
		BaseURL:      defaultBaseURL,
		APIKey:       apiKey,
		FastModel:    "llama-3.1-8b-instant",
		QualityModel: "llama-3.3-70b-versatile",
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type groqChatRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqChatResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// --- Interface Implementation ---

func (g *GroqProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := &llm.Options{
		Temperature: 0.3,
	}
	for _, opt := range opts {
		opt(options)
	}

	messages := make([]groqMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = groqMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	model := g.FastModel
	if options.Quality {
		model = g.QualityModel
	}
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := groqChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := g.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("groq: %w: %s", llm.ErrRateLimited, string(bodyBytes))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp groqChatResponse
	if err := json.Unmarshal(bodyBytes, &groqResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(groqResp.Choices) == 0 {
		return "", fmt.Errorf("groq returned an empty response")
	}

	return groqResp.Choices[0].Message.Content, nil
}

func (g *GroqProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
