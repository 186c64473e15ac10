package prompt

import (
	"strings"
	"testing"

	"inventory-agent-be/pkg/agent/state"
)

func TestBuildFullPrompt(t *testing.T) {
	con := state.New("¿cuántos filtros hay?", []state.Turn{
		{Speaker: state.SpeakerUser, Text: "hola"},
		{Speaker: state.SpeakerAgent, Text: "¡Hola! ¿En qué puedo ayudarte?"},
	})
	con.Apply(state.Delta{
		DataBlocks: []state.DataBlock{
			{Source: "inventory", Rows: []state.Row{
				{{Column: "part", Value: "filtro"}, {Column: "quantity", Value: 15}},
			}},
			{Source: "warranties"},
		},
		Errors: []state.ErrorRecord{{Stage: "fetch_parts", Message: "timeout"}},
	})

	got := NewContextBuilder(con).Build()

	for _, want := range []string{
		"Usuario: hola",
		"Asistente: ¡Hola! ¿En qué puedo ayudarte?",
		"Pregunta actual del usuario: ¿cuántos filtros hay?",
		"[inventory]",
		"- part: filtro | quantity: 15",
		"[warranties]",
		"No hay datos en esta categoría.",
		"fetch_parts",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestBuildWithoutDataOrHistory(t *testing.T) {
	con := state.New("¿cuántos filtros hay?", nil)

	got := NewContextBuilder(con).Build()

	if !strings.Contains(got, "No se encontraron datos en la base de datos.") {
		t.Errorf("prompt missing empty-data marker:\n%s", got)
	}
	if strings.Contains(got, "Historial") {
		t.Errorf("prompt includes a history section with no history:\n%s", got)
	}
	if strings.Contains(got, "NOTA") {
		t.Errorf("prompt includes a degraded note with no errors:\n%s", got)
	}
}

func TestBuildDegradedNoteNamesEachStageOnce(t *testing.T) {
	con := state.New("pregunta", nil)
	con.Apply(state.Delta{
		Errors: []state.ErrorRecord{
			{Stage: "fetch_inventory", Message: "timeout"},
			{Stage: "fetch_inventory", Message: "again"},
			{Stage: "fetch_warranties", Message: "down"},
		},
	})

	got := NewContextBuilder(con).Build()

	if strings.Count(got, "fetch_inventory") != 1 {
		t.Errorf("degraded note repeats a stage:\n%s", got)
	}
	if !strings.Contains(got, "fetch_inventory, fetch_warranties") {
		t.Errorf("degraded note does not list stages in order:\n%s", got)
	}
}
