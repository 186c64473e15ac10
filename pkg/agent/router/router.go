package router

import (
	"inventory-agent-be/pkg/agent/state"
)

// Next names the stage that runs after classification.
type Next string

const (
	NextDispatch   Next = "dispatch"
	NextSynthesize Next = "synthesize"
)

// Route is the pipeline's single branching point. It is a pure function of
// the container: a fatal error means classification is unusable and
// consulting data sources is pointless, so the dispatcher is skipped and the
// synthesizer answers directly. No stage may make this decision on its own.
func Route(c *state.Container) Next {
	if c.HasFatal() {
		return NextSynthesize
	}
	return NextDispatch
}
