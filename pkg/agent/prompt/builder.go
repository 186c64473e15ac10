package prompt

import (
	"fmt"
	"strings"

	"inventory-agent-be/pkg/agent/state"
)

// ContextBuilder assembles the synthesizer's prompt from the accumulated
// request state: recent history, every fetched data block, and a note naming
// the stages that degraded.
type ContextBuilder struct {
	container *state.Container
}

func NewContextBuilder(container *state.Container) *ContextBuilder {
	return &ContextBuilder{container: container}
}

func (b *ContextBuilder) Build() string {
	var prompt strings.Builder

	b.writeHistory(&prompt)
	b.writeUserQuestion(&prompt)
	b.writeData(&prompt)
	b.writeDegradedNote(&prompt)

	prompt.WriteString("\nGenera una respuesta natural basándote en estos datos.")
	return prompt.String()
}

func (b *ContextBuilder) writeHistory(prompt *strings.Builder) {
	if len(b.container.History) == 0 {
		return
	}

	prompt.WriteString("--- Historial de la conversación actual ---\n")
	for _, turn := range b.container.History {
		label := "Usuario"
		if turn.Speaker == state.SpeakerAgent {
			label = "Asistente"
		}
		prompt.WriteString(label)
		prompt.WriteString(": ")
		prompt.WriteString(turn.Text)
		prompt.WriteString("\n")
	}
	prompt.WriteString("--- Fin del historial ---\n\n")
}

func (b *ContextBuilder) writeUserQuestion(prompt *strings.Builder) {
	prompt.WriteString("Pregunta actual del usuario: ")
	prompt.WriteString(b.container.Question)
	prompt.WriteString("\n\n")
}

func (b *ContextBuilder) writeData(prompt *strings.Builder) {
	if len(b.container.DataBlocks) == 0 {
		prompt.WriteString("No se encontraron datos en la base de datos.\n")
		return
	}

	prompt.WriteString("=== Datos de la base de datos ===\n")
	for _, block := range b.container.DataBlocks {
		prompt.WriteString(fmt.Sprintf("\n[%s]\n", block.Source))
		if len(block.Rows) == 0 {
			// An explicit marker: a silently omitted block reads like a
			// fetch that never happened.
			prompt.WriteString("No hay datos en esta categoría.\n")
			continue
		}
		for _, row := range block.Rows {
			prompt.WriteString(renderRow(row))
			prompt.WriteString("\n")
		}
	}
}

func (b *ContextBuilder) writeDegradedNote(prompt *strings.Builder) {
	stages := b.container.RecoverableStages()
	if len(stages) == 0 {
		return
	}

	prompt.WriteString(fmt.Sprintf(
		"\nNOTA: Las siguientes consultas tuvieron problemas y no retornaron datos: %s. "+
			"Menciona al usuario que esa información no pudo obtenerse en este momento.\n",
		strings.Join(stages, ", ")))
}

// renderRow serializes one row as "col: value" pairs in column order, which
// keeps the rendering stable across runs.
func renderRow(row state.Row) string {
	parts := make([]string, len(row))
	for i, field := range row {
		parts[i] = fmt.Sprintf("%s: %v", field.Column, field.Value)
	}
	return "- " + strings.Join(parts, " | ")
}
