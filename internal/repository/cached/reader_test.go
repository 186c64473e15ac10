package cached

import (
	"context"
	"testing"
	"time"

	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/state"

	"github.com/stretchr/testify/assert"
)

func countingFetcher(calls *int, delta state.Delta) dispatch.Fetcher {
	return dispatch.FetcherFunc(func(_ context.Context, _ *state.Container) state.Delta {
		*calls++
		return delta
	})
}

func TestFetchCachesCleanDeltas(t *testing.T) {
	store := NewStore(time.Minute)
	calls := 0
	reader := Wrap("inventory", countingFetcher(&calls, state.Delta{
		DataBlocks: []state.DataBlock{{Source: "inventory"}},
	}), store)

	con := state.New("pregunta", nil)
	first := reader.Fetch(context.Background(), con)
	second := reader.Fetch(context.Background(), con)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestFetchDoesNotCacheFailures(t *testing.T) {
	store := NewStore(time.Minute)
	calls := 0
	reader := Wrap("inventory", countingFetcher(&calls, state.Delta{
		Errors: []state.ErrorRecord{{Stage: "fetch_inventory", Message: "down"}},
	}), store)

	con := state.New("pregunta", nil)
	reader.Fetch(context.Background(), con)
	reader.Fetch(context.Background(), con)

	assert.Equal(t, 2, calls)
}

func TestWrappedReadersDoNotShareEntries(t *testing.T) {
	store := NewStore(time.Minute)
	invCalls, partCalls := 0, 0
	inv := Wrap("inventory", countingFetcher(&invCalls, state.Delta{
		DataBlocks: []state.DataBlock{{Source: "inventory"}},
	}), store)
	parts := Wrap("parts", countingFetcher(&partCalls, state.Delta{
		DataBlocks: []state.DataBlock{{Source: "parts"}},
	}), store)

	con := state.New("pregunta", nil)
	invDelta := inv.Fetch(context.Background(), con)
	partDelta := parts.Fetch(context.Background(), con)

	assert.Equal(t, 1, invCalls)
	assert.Equal(t, 1, partCalls)
	assert.Equal(t, "inventory", invDelta.DataBlocks[0].Source)
	assert.Equal(t, "parts", partDelta.DataBlocks[0].Source)
}
