package executor

import (
	"context"
	"log"
	"time"

	"inventory-agent-be/pkg/agent/classifier"
	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/response"
	"inventory-agent-be/pkg/agent/router"
	"inventory-agent-be/pkg/agent/state"
)

// SessionStore is the bounded per-conversation history store. The pipeline
// is the only component that reads it or writes it back: stages never see
// session identifiers at all.
type SessionStore interface {
	// GetOrCreate resolves id to an existing session, or mints a new one
	// when id is empty or unknown, and returns the session's history.
	GetOrCreate(id string) (string, []state.Turn, error)

	// Put replaces the session's history wholesale. Histories are never
	// merged field-by-field at this layer.
	Put(id string, history []state.Turn) error
}

// Result is what one pipeline run hands back to the transport layer.
type Result struct {
	Answer     string
	SessionID  string
	Categories []string
	Errors     []state.ErrorRecord
	Elapsed    time.Duration
}

// Pipeline drives one request through Classifier -> Router -> {Dispatcher |
// skip} -> Synthesizer. It owns the state container for the request's
// lifetime; requests are independent and may run concurrently, but within a
// request the stages are strictly sequential.
type Pipeline struct {
	classifier *classifier.Classifier
	dispatcher *dispatch.Dispatcher
	generator  *response.Generator
	sessions   SessionStore
	logger     *log.Logger
}

func NewPipeline(
	cls *classifier.Classifier,
	dsp *dispatch.Dispatcher,
	gen *response.Generator,
	sessions SessionStore,
	logger *log.Logger,
) *Pipeline {
	return &Pipeline{
		classifier: cls,
		dispatcher: dsp,
		generator:  gen,
		sessions:   sessions,
		logger:     logger,
	}
}

// Ask runs the whole pipeline for one question. The session store is only
// written at the very end, so a canceled request can abandon in-flight
// fetch/completion calls without corrupting stored history.
func (p *Pipeline) Ask(ctx context.Context, question, sessionID string) (*Result, error) {
	started := time.Now()

	id, history, err := p.sessions.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	con := state.New(question, history)

	// Greetings bypass classification entirely; the synthesizer's greeting
	// branch answers them without any completion call.
	if !response.IsGreeting(question) {
		con.Apply(p.classifier.Run(ctx, con))

		if router.Route(con) == router.NextDispatch && p.shouldDispatch(con) {
			p.dispatcher.Run(ctx, con)
		}
	}

	con.Apply(p.generator.Run(ctx, con))

	// A fatal run leaves history untouched; a canceled one must not write a
	// half-finished record over good state.
	if !con.HasFatal() && ctx.Err() == nil {
		if err := p.sessions.Put(id, con.History); err != nil {
			p.logger.Printf("[PIPELINE] session write failed for %s: %v", id, err)
		}
	}

	elapsed := time.Since(started)
	p.logger.Printf("[PIPELINE] session=%s categories=%v errors=%d elapsed=%s",
		id, con.Categories, len(con.Errors), elapsed)

	return &Result{
		Answer:     con.FinalAnswer,
		SessionID:  id,
		Categories: con.Categories,
		Errors:     con.Errors,
		Elapsed:    elapsed,
	}, nil
}

// shouldDispatch covers the short-circuits the router does not own: an
// unrecognized classification and an empty category set have nothing to
// fetch, and the synthesizer handles both.
func (p *Pipeline) shouldDispatch(con *state.Container) bool {
	return len(con.Categories) > 0 && !con.Unrecognized()
}
