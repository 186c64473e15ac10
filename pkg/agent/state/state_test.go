package state

import (
	"fmt"
	"testing"
)

func TestApplyMergeRules(t *testing.T) {
	con := New("¿Cuántos filtros hay?", nil)

	con.Apply(Delta{
		Categories:    []string{"inventory"},
		OperationKind: OperationRead,
	})
	con.Apply(Delta{
		DataBlocks: []DataBlock{{Source: "inventory"}},
		Errors:     []ErrorRecord{{Stage: "fetch_warranties", Message: "boom"}},
	})
	con.Apply(Delta{
		DataBlocks: []DataBlock{{Source: "warranties"}},
	})

	if len(con.DataBlocks) != 2 {
		t.Errorf("DataBlocks = %d, want 2 (append, not overwrite)", len(con.DataBlocks))
	}
	if len(con.Errors) != 1 {
		t.Errorf("Errors = %d, want 1", len(con.Errors))
	}
	if con.DataBlocks[0].Source != "inventory" || con.DataBlocks[1].Source != "warranties" {
		t.Errorf("DataBlocks order = [%s, %s], want [inventory, warranties]",
			con.DataBlocks[0].Source, con.DataBlocks[1].Source)
	}

	// Zero values on the overwrite fields must not clear prior writes.
	con.Apply(Delta{})
	if len(con.Categories) != 1 || con.Categories[0] != "inventory" {
		t.Errorf("Categories = %v, want [inventory] after empty delta", con.Categories)
	}
	if con.OperationKind != OperationRead {
		t.Errorf("OperationKind = %q, want read after empty delta", con.OperationKind)
	}

	// A non-zero write replaces.
	con.Apply(Delta{Categories: []string{"parts"}, FinalAnswer: "listo"})
	if len(con.Categories) != 1 || con.Categories[0] != "parts" {
		t.Errorf("Categories = %v, want [parts]", con.Categories)
	}
	if con.FinalAnswer != "listo" {
		t.Errorf("FinalAnswer = %q, want listo", con.FinalAnswer)
	}
}

func TestHistoryBound(t *testing.T) {
	var seed []Turn
	for i := 0; i < MaxHistoryTurns+6; i++ {
		seed = append(seed, Turn{Speaker: SpeakerUser, Text: fmt.Sprintf("turno %d", i)})
	}

	con := New("pregunta", seed)
	if len(con.History) != MaxHistoryTurns {
		t.Fatalf("seed history = %d turns, want %d", len(con.History), MaxHistoryTurns)
	}
	if con.History[len(con.History)-1].Text != "turno 15" {
		t.Errorf("last turn = %q, want the newest seed turn", con.History[len(con.History)-1].Text)
	}

	con.Apply(Delta{History: []Turn{
		{Speaker: SpeakerUser, Text: "nueva pregunta"},
		{Speaker: SpeakerAgent, Text: "nueva respuesta"},
	}})
	if len(con.History) != MaxHistoryTurns {
		t.Errorf("history after apply = %d turns, want %d", len(con.History), MaxHistoryTurns)
	}
	if con.History[len(con.History)-1].Text != "nueva respuesta" {
		t.Errorf("truncation dropped the newest turn")
	}
}

func TestNewCopiesSeedHistory(t *testing.T) {
	seed := []Turn{{Speaker: SpeakerUser, Text: "original"}}
	con := New("pregunta", seed)

	seed[0].Text = "mutated"
	if con.History[0].Text != "original" {
		t.Errorf("container history aliases the seed slice")
	}
}

func TestErrorPredicates(t *testing.T) {
	con := New("pregunta", nil)
	if con.HasFatal() {
		t.Errorf("fresh container reports fatal")
	}

	con.Apply(Delta{Errors: []ErrorRecord{
		{Stage: "fetch_inventory", Message: "timeout"},
		{Stage: "fetch_inventory", Message: "timeout again"},
		{Stage: "fetch_parts", Message: "down"},
	}})
	if con.HasFatal() {
		t.Errorf("recoverable errors reported as fatal")
	}

	stages := con.RecoverableStages()
	if len(stages) != 2 || stages[0] != "fetch_inventory" || stages[1] != "fetch_parts" {
		t.Errorf("RecoverableStages = %v, want deduped in-order [fetch_inventory, fetch_parts]", stages)
	}

	con.Apply(Delta{Errors: []ErrorRecord{{Stage: "classifier", Message: "outage", Fatal: true}}})
	if !con.HasFatal() {
		t.Errorf("fatal error not reported")
	}
	stages = con.RecoverableStages()
	if len(stages) != 2 {
		t.Errorf("fatal stage leaked into RecoverableStages: %v", stages)
	}
}

func TestUnrecognized(t *testing.T) {
	tests := []struct {
		categories []string
		want       bool
	}{
		{nil, false},
		{[]string{CategoryUnrecognized}, true},
		{[]string{"inventory"}, false},
		{[]string{CategoryUnrecognized, "inventory"}, false},
	}
	for _, tt := range tests {
		con := New("pregunta", nil)
		con.Categories = tt.categories
		if got := con.Unrecognized(); got != tt.want {
			t.Errorf("Unrecognized(%v) = %v, want %v", tt.categories, got, tt.want)
		}
	}
}

func TestCloneIsolation(t *testing.T) {
	con := New("pregunta", []Turn{{Speaker: SpeakerUser, Text: "hola"}})
	con.Apply(Delta{
		Categories: []string{"inventory"},
		DataBlocks: []DataBlock{{Source: "inventory", Rows: []Row{{{Column: "name", Value: "filtro"}}}}},
	})

	clone := con.Clone()
	clone.History[0].Text = "changed"
	clone.Categories[0] = "changed"
	clone.DataBlocks[0].Rows[0][0].Value = "changed"

	if con.History[0].Text != "hola" {
		t.Errorf("clone shares history backing array")
	}
	if con.Categories[0] != "inventory" {
		t.Errorf("clone shares categories backing array")
	}
	if v, _ := con.DataBlocks[0].Rows[0].Get("name"); v != "filtro" {
		t.Errorf("clone shares row backing array")
	}
}
