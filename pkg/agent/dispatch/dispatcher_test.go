package dispatch

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"inventory-agent-be/pkg/agent/state"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func blockFetcher(source string, delay time.Duration) Fetcher {
	return FetcherFunc(func(ctx context.Context, _ *state.Container) state.Delta {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return state.Delta{Errors: []state.ErrorRecord{{
					Stage: "fetch_" + source, Message: ctx.Err().Error(),
				}}}
			}
		}
		return state.Delta{DataBlocks: []state.DataBlock{{Source: source}}}
	})
}

func failingFetcher(stage string) Fetcher {
	return FetcherFunc(func(_ context.Context, _ *state.Container) state.Delta {
		return state.Delta{Errors: []state.ErrorRecord{{Stage: stage, Message: "connection reset"}}}
	})
}

func TestRunFanOutMergesInCategoryOrder(t *testing.T) {
	d := NewDispatcher(map[string]Fetcher{
		"inventory":  blockFetcher("inventory", 30*time.Millisecond), // slowest finishes last
		"warranties": blockFetcher("warranties", 0),
		"parts":      blockFetcher("parts", 10*time.Millisecond),
	}, testLogger())

	con := state.New("dame todo", nil)
	con.Apply(state.Delta{Categories: []string{"inventory", "warranties", "parts"}})

	d.Run(context.Background(), con)

	if len(con.DataBlocks) != 3 {
		t.Fatalf("DataBlocks = %d, want 3", len(con.DataBlocks))
	}
	got := []string{con.DataBlocks[0].Source, con.DataBlocks[1].Source, con.DataBlocks[2].Source}
	want := []string{"inventory", "warranties", "parts"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block order = %v, want %v (must follow category order, not completion order)", got, want)
			break
		}
	}
}

func TestRunPartialFailureKeepsSiblingData(t *testing.T) {
	d := NewDispatcher(map[string]Fetcher{
		"inventory":  blockFetcher("inventory", 0),
		"warranties": failingFetcher("fetch_warranties"),
	}, testLogger())

	con := state.New("stock y garantías", nil)
	con.Apply(state.Delta{Categories: []string{"inventory", "warranties"}})

	d.Run(context.Background(), con)

	if len(con.DataBlocks) != 1 || con.DataBlocks[0].Source != "inventory" {
		t.Errorf("DataBlocks = %v, want inventory block to survive the sibling failure", con.DataBlocks)
	}
	if len(con.Errors) != 1 || con.Errors[0].Fatal {
		t.Errorf("Errors = %v, want one recoverable record", con.Errors)
	}
	if con.HasFatal() {
		t.Errorf("partial failure escalated to fatal")
	}
}

func TestRunUnmappedCategoriesAggregate(t *testing.T) {
	d := NewDispatcher(map[string]Fetcher{
		"inventory": blockFetcher("inventory", 0),
	}, testLogger())

	con := state.New("pregunta", nil)
	con.Apply(state.Delta{Categories: []string{"inventory", "orders", "invoices"}})

	d.Run(context.Background(), con)

	var unmappedRecords int
	for _, e := range con.Errors {
		if e.Stage == Stage && strings.Contains(e.Message, "no fetcher registered") {
			unmappedRecords++
			if !strings.Contains(e.Message, "orders") || !strings.Contains(e.Message, "invoices") {
				t.Errorf("aggregate message missing categories: %q", e.Message)
			}
		}
	}
	if unmappedRecords != 1 {
		t.Errorf("unmapped records = %d, want exactly one aggregate", unmappedRecords)
	}
	if len(con.DataBlocks) != 1 {
		t.Errorf("mapped category did not run alongside unmapped ones")
	}
}

func TestRunNoDataSignal(t *testing.T) {
	empty := FetcherFunc(func(_ context.Context, _ *state.Container) state.Delta {
		return state.Delta{}
	})
	d := NewDispatcher(map[string]Fetcher{"inventory": empty}, testLogger())

	con := state.New("pregunta", nil)
	con.Apply(state.Delta{Categories: []string{"inventory"}})

	d.Run(context.Background(), con)

	found := false
	for _, e := range con.Errors {
		if e.Stage == Stage && e.Message == "no category returned data" && !e.Fatal {
			found = true
		}
	}
	if !found {
		t.Errorf("missing recoverable no-data signal, errors = %v", con.Errors)
	}
}

func TestRunFetchTimeout(t *testing.T) {
	d := NewDispatcher(map[string]Fetcher{
		"inventory": blockFetcher("inventory", time.Second),
	}, testLogger()).WithFetchTimeout(10 * time.Millisecond)

	con := state.New("pregunta", nil)
	con.Apply(state.Delta{Categories: []string{"inventory"}})

	started := time.Now()
	d.Run(context.Background(), con)

	if elapsed := time.Since(started); elapsed > 500*time.Millisecond {
		t.Fatalf("dispatch took %s, timeout not applied", elapsed)
	}
	if len(con.DataBlocks) != 0 {
		t.Errorf("timed-out fetch produced data")
	}
	if con.HasFatal() {
		t.Errorf("timeout escalated to fatal")
	}
}

func TestFetchersSeeSnapshotNotContainer(t *testing.T) {
	var seen *state.Container
	spy := FetcherFunc(func(_ context.Context, snapshot *state.Container) state.Delta {
		seen = snapshot
		return state.Delta{DataBlocks: []state.DataBlock{{Source: "inventory"}}}
	})
	d := NewDispatcher(map[string]Fetcher{"inventory": spy}, testLogger())

	con := state.New("pregunta", nil)
	con.Apply(state.Delta{Categories: []string{"inventory"}})

	d.Run(context.Background(), con)

	if seen == con {
		t.Errorf("fetcher received the live container instead of a snapshot")
	}
	if seen == nil || seen.Question != con.Question {
		t.Errorf("snapshot does not carry the request state")
	}
}

func TestSources(t *testing.T) {
	d := NewDispatcher(map[string]Fetcher{
		"warranties": failingFetcher("x"),
		"inventory":  failingFetcher("x"),
		"parts":      failingFetcher("x"),
	}, testLogger())

	got := d.Sources()
	want := []string{"inventory", "parts", "warranties"}
	if len(got) != len(want) {
		t.Fatalf("Sources = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sources = %v, want sorted %v", got, want)
			break
		}
	}
}
