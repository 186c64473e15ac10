package response

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"inventory-agent-be/pkg/agent/prompt"
	"inventory-agent-be/pkg/agent/state"
	"inventory-agent-be/pkg/llm"
)

// Stage is the name this stage writes into ErrorRecords.
const Stage = "response_synthesizer"

// maxGreetingTokens bounds how long a message can be and still count as a
// plain greeting. "hola" qualifies; "hola cuantos repuestos hay en bodega"
// must go through classification.
const maxGreetingTokens = 5

const systemPrompt = `Eres un asistente de voz profesional para Minca Electric, una empresa industrial.
Tu respuesta se va a convertir en audio mediante text-to-speech, por lo que debe sonar natural al escucharse.

REGLAS DE FORMATO:
- Responde siempre en español.
- Sé conciso pero completo. Evita listas largas porque no se ven en audio.
- Los números escríbelos en palabras cuando es natural: "hay quince unidades" en lugar de "15".
  Excepto para referencias de repuestos como "ABC-123", esas se dejan tal cual.
- Las fechas sintetízalas de forma natural: "el tres de marzo" en lugar de "2025-03-03T00:00:00".
- No uses viñetas, guiones ni numeración. Escribe en prosa.
- Si hay muchos datos, prioriza los más relevantes y menciona que hay más disponibles.

REGLAS DE CONTENIDO:
- Responde ÚNICAMENTE con información que esté en los datos proporcionados.
- No inventes datos ni hagas suposiciones.
- Si los datos están vacíos, dilo claramente y sugiere reformular.
- Si hay errores parciales (algunas consultas fallaron), menciona qué información no pudo obtenerse.
- Si el usuario hace una referencia a algo anterior en la conversación, úsala para contextualizar.`

const fatalApology = "Lo siento mucho, ocurrió un problema interno al procesar tu pregunta. " +
	"Por favor, intenta de nuevo en un momento."

const retryFallback = "Tuve un problema al generar la respuesta, pero las consultas sí se completaron. " +
	"Por favor, intenta de nuevo."

var greetingTokens = map[string]bool{
	"hola":    true,
	"buenas":  true,
	"buenos":  true,
	"saludos": true,
	"hey":     true,
	"hello":   true,
	"hi":      true,
}

var greetingPool = []string{
	"¡Hola! Soy el asistente de Minca Electric. ¿En qué puedo ayudarte hoy?",
	"¡Buenas! ¿Qué necesitas consultar del inventario?",
	"Hola, aquí estoy. Pregúntame por repuestos, garantías o solicitudes cuando quieras.",
	"¡Hola! ¿Quieres revisar el stock, las garantías o algún movimiento?",
	"Saludos. Dime qué información del almacén necesitas.",
}

// IsGreeting reports whether the raw question is a short salutation. The
// driver consults it before classification so greetings never touch the
// completion capability: they are frequent, latency-sensitive, and must not
// depend on model availability.
func IsGreeting(question string) bool {
	folded := strings.ToLower(strings.TrimSpace(question))
	tokens := strings.Fields(folded)
	if len(tokens) == 0 || len(tokens) > maxGreetingTokens {
		return false
	}
	for _, token := range tokens {
		if greetingTokens[strings.Trim(token, ".,!¡¿?")] {
			return true
		}
	}
	return false
}

// Generator is the last stage: it turns the accumulated state into the
// final answer and the history turns to persist.
type Generator struct {
	llmProvider         llm.LLMProvider
	supportedCategories []string
	logger              *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, supportedCategories []string, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider:         llmProvider,
		supportedCategories: supportedCategories,
		logger:              logger,
	}
}

// Run evaluates the answer branches in fixed priority order: greeting,
// fatal, unrecognized, then the LLM-backed normal path. Every branch except
// the fatal one appends the exchange to history; a fatal turn is not useful
// conversational context and would pollute future classification.
func (g *Generator) Run(ctx context.Context, con *state.Container) state.Delta {
	if IsGreeting(con.Question) {
		answer := greetingPool[rand.Intn(len(greetingPool))]
		return withHistory(con, state.Delta{FinalAnswer: answer})
	}

	if con.HasFatal() {
		return state.Delta{FinalAnswer: fatalApology}
	}

	if con.Unrecognized() {
		answer := fmt.Sprintf(
			"No entendí del todo tu pregunta. ¿Podrías reformularla con más detalle? "+
				"Puedo ayudarte con información sobre estas categorías: %s.",
			strings.Join(g.supportedCategories, ", "))
		return withHistory(con, state.Delta{FinalAnswer: answer})
	}

	promptText := prompt.NewContextBuilder(con).Build()

	answer, err := g.llmProvider.Chat(ctx,
		[]llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: promptText},
		},
		llm.WithTemperature(0.4),
		llm.WithMaxTokens(1024),
		llm.WithQuality(),
	)
	if err != nil {
		// The queries already ran; losing the final wording is recoverable
		// and must never propagate past this stage.
		g.logger.Printf("[GENERATION] completion call failed: %v", err)
		return withHistory(con, state.Delta{
			FinalAnswer: retryFallback,
			Errors: []state.ErrorRecord{{
				Stage:   Stage,
				Message: fmt.Sprintf("answer generation failed: %v", err),
				Fatal:   false,
			}},
		})
	}

	g.logger.Printf("[GENERATION] answer generated from %d data blocks", len(con.DataBlocks))
	return withHistory(con, state.Delta{FinalAnswer: answer})
}

func withHistory(con *state.Container, d state.Delta) state.Delta {
	d.History = append(d.History, state.Turn{Speaker: state.SpeakerUser, Text: con.Question})
	if d.FinalAnswer != "" {
		d.History = append(d.History, state.Turn{Speaker: state.SpeakerAgent, Text: d.FinalAnswer})
	}
	return d
}
