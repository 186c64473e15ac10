package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"inventory-agent-be/pkg/agent/state"
	"inventory-agent-be/pkg/llm"
)

// Stage is the name this stage writes into ErrorRecords.
const Stage = "classifier"

// recentTurns is how much conversation context the classifier sees. Shorter
// than the synthesizer's window: old turns add cost without improving
// category detection.
const recentTurns = 4

const systemPrompt = `You are an intent classifier for Minca Electric, an industrial spare-parts inventory system. Users ask questions in Spanish.

Analyze the user's question and return ONLY a valid JSON object, with no extra text, no explanations, no code blocks.

The available data categories are:
- "inventory": stock quantities, positions, spare-part stock per location
- "warranties": part warranties, statuses (pending, resolved), failure reasons
- "technician_movements": part movements performed by technicians, work orders
- "transfer_requests": part requests between locations, traceability, statuses
- "stock_counts": physical audits, counts, differences found
- "parts": the parts catalog (references, brands, descriptions)

The operation kinds are:
- "read": the user only wants information
- "insert": the user wants to add new data
- "update": the user wants to modify existing data
- "delete": the user wants to remove data

RULES:
- If the question needs information from several categories, include all of them.
- If you do not understand the question, return categories: ["unrecognized"].
- The system only supports reads for now. If the user asks to write, still detect the right category and report the operation kind you detect.

Return ONLY this (no extra quotes, no markdown):
{"categories": ["category1", "category2"], "operation_kind": "read"}

Examples:
- "¿Cuántos filtros hay en la bodega?" -> {"categories": ["inventory"], "operation_kind": "read"}
- "¿Cuál es el estado de la garantía del repuesto ABC?" -> {"categories": ["warranties"], "operation_kind": "read"}
- "Dame el stock y las garantías pendientes" -> {"categories": ["inventory", "warranties"], "operation_kind": "read"}
- "Agrega un nuevo repuesto" -> {"categories": ["parts"], "operation_kind": "insert"}
- "¿Qué es lo que hace?" -> {"categories": ["unrecognized"], "operation_kind": "read"}`

// Classifier turns the question plus recent history into category tags and
// an operation kind.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewClassifier(llmProvider llm.LLMProvider, logger *log.Logger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

type classification struct {
	Categories    []string `json:"categories"`
	OperationKind string   `json:"operation_kind"`
}

// Run classifies the container's question. A malformed model answer is a
// routine event and degrades to the unrecognized sentinel with a recoverable
// error; failing to reach the completion capability at all is fatal, because
// the pipeline then has no basis for deciding what to fetch.
func (c *Classifier) Run(ctx context.Context, con *state.Container) state.Delta {
	prompt := c.buildPrompt(con)

	raw, err := c.llmProvider.Chat(ctx,
		[]llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(256),
	)
	if err != nil {
		c.logger.Printf("[CLASSIFIER] completion call failed: %v", err)
		return state.Delta{
			Errors: []state.ErrorRecord{{
				Stage:   Stage,
				Message: fmt.Sprintf("classification unavailable: %v", err),
				Fatal:   true,
			}},
		}
	}

	result, err := parseClassification(raw)
	if err != nil {
		c.logger.Printf("[CLASSIFIER] unusable model output: %v", err)
		return state.Delta{
			Categories:    []string{state.CategoryUnrecognized},
			OperationKind: state.OperationRead,
			Errors: []state.ErrorRecord{{
				Stage:   Stage,
				Message: fmt.Sprintf("model returned an unusable classification: %v", err),
				Fatal:   false,
			}},
		}
	}

	c.logger.Printf("[CLASSIFIER] categories=%v operation=%s", result.Categories, result.OperationKind)
	return state.Delta{
		Categories:    result.Categories,
		OperationKind: state.OperationKind(result.OperationKind),
	}
}

func (c *Classifier) buildPrompt(con *state.Container) string {
	var sb strings.Builder

	if len(con.History) > 0 {
		recent := con.History
		if len(recent) > recentTurns {
			recent = recent[len(recent)-recentTurns:]
		}
		sb.WriteString("Context from the previous conversation:\n")
		for _, turn := range recent {
			label := "Usuario"
			if turn.Speaker == state.SpeakerAgent {
				label = "Agente"
			}
			sb.WriteString(label)
			sb.WriteString(": ")
			sb.WriteString(turn.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Current user question: ")
	sb.WriteString(con.Question)
	return sb.String()
}

func parseClassification(raw string) (*classification, error) {
	cleaned := stripCodeFence(raw)

	var result classification
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if len(result.Categories) == 0 {
		return nil, fmt.Errorf("empty categories")
	}
	for _, cat := range result.Categories {
		if strings.TrimSpace(cat) == "" {
			return nil, fmt.Errorf("blank category entry")
		}
	}
	if !state.KnownOperation(result.OperationKind) {
		return nil, fmt.Errorf("unknown operation kind %q", result.OperationKind)
	}

	return &result, nil
}

// stripCodeFence removes markdown fence lines the model sometimes wraps its
// JSON in, despite being told not to.
func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	var kept []string
	for _, line := range strings.Split(cleaned, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
