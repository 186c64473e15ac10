package dispatch

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-agent-be/pkg/agent/state"
)

// Stage is the name this stage writes into ErrorRecords.
const Stage = "query_dispatcher"

// DefaultFetchTimeout caps any single category fetch. A slow source is
// treated like a failed one instead of stalling the whole answer.
const DefaultFetchTimeout = 15 * time.Second

// Fetcher is one category's data-fetch capability. It receives a read-only
// snapshot of the container and reports everything, including failures,
// through the returned delta: a Fetcher must not depend on or mutate state
// written by a sibling fetch in the same dispatch, and it never returns an
// error by any other channel.
type Fetcher interface {
	Fetch(ctx context.Context, snapshot *state.Container) state.Delta
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, snapshot *state.Container) state.Delta

func (f FetcherFunc) Fetch(ctx context.Context, snapshot *state.Container) state.Delta {
	return f(ctx, snapshot)
}

// Dispatcher fans a request's categories out over the registered fetchers
// and folds every delta back into the container. One category failing never
// discards another category's rows.
type Dispatcher struct {
	fetchers     map[string]Fetcher
	fetchTimeout time.Duration
	logger       *log.Logger
}

func NewDispatcher(fetchers map[string]Fetcher, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		fetchers:     fetchers,
		fetchTimeout: DefaultFetchTimeout,
		logger:       logger,
	}
}

// WithFetchTimeout overrides the per-category timeout. Mostly for tests.
func (d *Dispatcher) WithFetchTimeout(timeout time.Duration) *Dispatcher {
	d.fetchTimeout = timeout
	return d
}

// Run executes every mapped category fetch concurrently, each against its
// own snapshot, then merges the deltas in category order. Collecting first
// and folding after keeps the final DataBlocks/Errors independent of which
// fetch finished first; the driver has already guaranteed the categories are
// non-empty and not the unrecognized sentinel.
func (d *Dispatcher) Run(ctx context.Context, con *state.Container) {
	mapped, unmapped := d.partition(con.Categories)

	if len(unmapped) > 0 {
		// One aggregate record, not one per category: the user-facing note
		// names the stage, not each miss.
		con.Apply(state.Delta{
			Errors: []state.ErrorRecord{{
				Stage:   Stage,
				Message: fmt.Sprintf("no fetcher registered for categories: %s", strings.Join(unmapped, ", ")),
				Fatal:   false,
			}},
		})
	}

	if len(mapped) == 0 {
		if len(con.DataBlocks) == 0 {
			con.Apply(noDataDelta())
		}
		return
	}

	deltas := make([]state.Delta, len(mapped))
	var wg sync.WaitGroup

	for i, category := range mapped {
		wg.Add(1)
		go func(i int, category string) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, d.fetchTimeout)
			defer cancel()

			started := time.Now()
			deltas[i] = d.fetchers[category].Fetch(fetchCtx, con.Clone())
			d.logger.Printf("[DISPATCH] category=%s blocks=%d errors=%d elapsed=%s",
				category, len(deltas[i].DataBlocks), len(deltas[i].Errors), time.Since(started))
		}(i, category)
	}

	wg.Wait()

	// The merge step is serialized here: one delta folded at a time, in the
	// order the categories were requested.
	for _, delta := range deltas {
		con.Apply(delta)
	}

	if len(con.DataBlocks) == 0 {
		// A signal for the synthesizer, not a hard failure: it should tell
		// the user no data was found rather than error out.
		con.Apply(noDataDelta())
	}
}

// Sources lists the registered category names. Used by the clarification
// message and by the readiness check.
func (d *Dispatcher) Sources() []string {
	names := make([]string, 0, len(d.fetchers))
	for name := range d.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) partition(categories []string) (mapped, unmapped []string) {
	for _, category := range categories {
		if _, ok := d.fetchers[category]; ok {
			mapped = append(mapped, category)
		} else {
			unmapped = append(unmapped, category)
		}
	}
	return mapped, unmapped
}

func noDataDelta() state.Delta {
	return state.Delta{
		Errors: []state.ErrorRecord{{
			Stage:   Stage,
			Message: "no category returned data",
			Fatal:   false,
		}},
	}
}
