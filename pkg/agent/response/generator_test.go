package response

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"inventory-agent-be/pkg/agent/state"
	"inventory-agent-be/pkg/llm"
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

var supported = []string{"inventory", "parts", "warranties"}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"hola", true},
		{"HOLA", true},
		{"  ¡Hola!  ", true},
		{"buenas tardes", true},
		{"hey, buenos días", true},
		{"hola cuantos repuestos hay en bodega", false}, // six tokens, must be classified
		{"¿cuántos filtros hay?", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsGreeting(tt.question); got != tt.want {
			t.Errorf("IsGreeting(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestRunGreetingSkipsCompletion(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider must not be called")}
	gen := NewGenerator(provider, supported, testLogger())

	con := state.New("¡Hola!", nil)
	delta := gen.Run(context.Background(), con)

	if provider.calls != 0 {
		t.Fatalf("greeting reached the completion provider")
	}
	if delta.FinalAnswer == "" {
		t.Fatalf("greeting produced no answer")
	}
	found := false
	for _, canned := range greetingPool {
		if delta.FinalAnswer == canned {
			found = true
		}
	}
	if !found {
		t.Errorf("answer %q not from the greeting pool", delta.FinalAnswer)
	}
	if len(delta.History) != 2 {
		t.Errorf("greeting history = %d turns, want question plus answer", len(delta.History))
	}
}

func TestRunFatalApologyWithoutHistory(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider must not be called")}
	gen := NewGenerator(provider, supported, testLogger())

	con := state.New("¿cuántos filtros hay?", nil)
	con.Apply(state.Delta{Errors: []state.ErrorRecord{{Stage: "classifier", Message: "outage", Fatal: true}}})

	delta := gen.Run(context.Background(), con)

	if provider.calls != 0 {
		t.Fatalf("fatal branch reached the completion provider")
	}
	if delta.FinalAnswer != fatalApology {
		t.Errorf("FinalAnswer = %q, want the fixed apology", delta.FinalAnswer)
	}
	if len(delta.History) != 0 {
		t.Errorf("fatal branch wrote %d history turns, want none", len(delta.History))
	}
}

func TestRunUnrecognizedClarification(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider must not be called")}
	gen := NewGenerator(provider, supported, testLogger())

	con := state.New("asdf qwerty", nil)
	con.Apply(state.Delta{Categories: []string{state.CategoryUnrecognized}})

	delta := gen.Run(context.Background(), con)

	if provider.calls != 0 {
		t.Fatalf("unrecognized branch reached the completion provider")
	}
	for _, category := range supported {
		if !strings.Contains(delta.FinalAnswer, category) {
			t.Errorf("clarification does not name category %q: %q", category, delta.FinalAnswer)
		}
	}
	if len(delta.History) != 2 {
		t.Errorf("unrecognized history = %d turns, want 2", len(delta.History))
	}
}

func TestRunNormalPath(t *testing.T) {
	provider := &stubProvider{response: "Hay quince filtros en la bodega central."}
	gen := NewGenerator(provider, supported, testLogger())

	con := state.New("¿cuántos filtros hay?", nil)
	con.Apply(state.Delta{
		Categories: []string{"inventory"},
		DataBlocks: []state.DataBlock{{Source: "inventory", Rows: []state.Row{
			{{Column: "part", Value: "filtro"}, {Column: "quantity", Value: 15}},
		}}},
	})

	delta := gen.Run(context.Background(), con)

	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
	if delta.FinalAnswer != provider.response {
		t.Errorf("FinalAnswer = %q, want the model output", delta.FinalAnswer)
	}
	if len(delta.Errors) != 0 {
		t.Errorf("unexpected errors: %v", delta.Errors)
	}
	if len(delta.History) != 2 || delta.History[1].Speaker != state.SpeakerAgent {
		t.Errorf("history = %v, want user turn then agent turn", delta.History)
	}
}

func TestRunCompletionFailureFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("boom")}
	gen := NewGenerator(provider, supported, testLogger())

	con := state.New("¿cuántos filtros hay?", nil)
	con.Apply(state.Delta{
		Categories: []string{"inventory"},
		DataBlocks: []state.DataBlock{{Source: "inventory"}},
	})

	delta := gen.Run(context.Background(), con)

	if delta.FinalAnswer != retryFallback {
		t.Errorf("FinalAnswer = %q, want the retry fallback", delta.FinalAnswer)
	}
	if len(delta.Errors) != 1 || delta.Errors[0].Fatal || delta.Errors[0].Stage != Stage {
		t.Errorf("Errors = %v, want one recoverable %s record", delta.Errors, Stage)
	}
	if len(delta.History) != 2 {
		t.Errorf("fallback answer not recorded in history")
	}
}
