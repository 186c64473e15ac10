package router

import (
	"testing"

	"inventory-agent-be/pkg/agent/state"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name   string
		errors []state.ErrorRecord
		want   Next
	}{
		{
			name: "clean run goes to dispatch",
			want: NextDispatch,
		},
		{
			name:   "recoverable error still dispatches",
			errors: []state.ErrorRecord{{Stage: "classifier", Message: "unusable output"}},
			want:   NextDispatch,
		},
		{
			name:   "fatal error skips to synthesizer",
			errors: []state.ErrorRecord{{Stage: "classifier", Message: "outage", Fatal: true}},
			want:   NextSynthesize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			con := state.New("pregunta", nil)
			con.Apply(state.Delta{Errors: tt.errors})
			if got := Route(con); got != tt.want {
				t.Errorf("Route() = %v, want %v", got, tt.want)
			}
		})
	}
}
