package state

// MaxHistoryTurns bounds conversation history everywhere it is written:
// inside a request, in the session store, and in the prompts built from it.
const MaxHistoryTurns = 10

// CategoryUnrecognized is the sentinel the classifier emits when it cannot
// map the question onto any data category. It short-circuits data fetching.
const CategoryUnrecognized = "unrecognized"

type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// Turn is one utterance in the conversation history.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

type OperationKind string

const (
	OperationRead   OperationKind = "read"
	OperationInsert OperationKind = "insert"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// KnownOperation reports whether s is one of the four operation literals.
// Only "read" is executable today; the others are recorded for when write
// support lands and never trigger mutation logic.
func KnownOperation(s string) bool {
	switch OperationKind(s) {
	case OperationRead, OperationInsert, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// Field is one column of a result row. Rows keep the query's column order so
// rendering is stable; a plain map would shuffle it.
type Field struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

type Row []Field

func (r Row) Get(column string) (any, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// DataBlock is one fetcher's contribution under a named source. A single
// category may emit more than one block (e.g. stock counts plus their
// differences), so consumers must not assume one block per category.
type DataBlock struct {
	Source string `json:"source"`
	Rows   []Row  `json:"rows"`
}

// ErrorRecord is the pipeline's whole error taxonomy. Fatal means the
// request has lost the information needed to decide what to do next;
// everything else degrades the answer without aborting it.
type ErrorRecord struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// Container is the per-request record threaded through the pipeline stages.
// The driver owns it for the request's lifetime; stages read it and hand
// back Deltas, they never mutate it directly.
type Container struct {
	Question      string
	History       []Turn
	Categories    []string
	OperationKind OperationKind
	DataBlocks    []DataBlock
	Errors        []ErrorRecord
	FinalAnswer   string
}

// New seeds a container with the incoming question and the session's
// history. The seed history is copied so the store and the request never
// alias the same backing array.
func New(question string, history []Turn) *Container {
	c := &Container{
		Question: question,
		History:  make([]Turn, len(history)),
	}
	copy(c.History, history)
	c.truncateHistory()
	return c
}

// Delta is the subset of fields a stage changed. The merge rule per field is
// fixed here, not chosen per call: History, DataBlocks and Errors append;
// Categories, OperationKind and FinalAnswer overwrite (each is written by
// exactly one stage, and an empty value means "not written"). Last-write-
// wins on the appending fields would silently drop every fan-out
// contribution except the last, which is exactly the defect this model
// exists to prevent.
type Delta struct {
	History       []Turn
	Categories    []string
	OperationKind OperationKind
	DataBlocks    []DataBlock
	Errors        []ErrorRecord
	FinalAnswer   string
}

// Apply folds a stage delta into the container.
func (c *Container) Apply(d Delta) {
	c.History = append(c.History, d.History...)
	c.truncateHistory()

	c.DataBlocks = append(c.DataBlocks, d.DataBlocks...)
	c.Errors = append(c.Errors, d.Errors...)

	if d.Categories != nil {
		c.Categories = d.Categories
	}
	if d.OperationKind != "" {
		c.OperationKind = d.OperationKind
	}
	if d.FinalAnswer != "" {
		c.FinalAnswer = d.FinalAnswer
	}
}

func (c *Container) truncateHistory() {
	if len(c.History) > MaxHistoryTurns {
		c.History = c.History[len(c.History)-MaxHistoryTurns:]
	}
}

// HasFatal reports whether any stage recorded a fatal error.
func (c *Container) HasFatal() bool {
	for _, e := range c.Errors {
		if e.Fatal {
			return true
		}
	}
	return false
}

// Unrecognized reports whether the classifier could not map the question.
func (c *Container) Unrecognized() bool {
	return len(c.Categories) == 1 && c.Categories[0] == CategoryUnrecognized
}

// RecoverableStages lists, in order and without duplicates, the stages that
// recorded recoverable errors. The synthesizer names them so the answer can
// acknowledge partial degradation.
func (c *Container) RecoverableStages() []string {
	var stages []string
	seen := make(map[string]bool)
	for _, e := range c.Errors {
		if e.Fatal || seen[e.Stage] {
			continue
		}
		seen[e.Stage] = true
		stages = append(stages, e.Stage)
	}
	return stages
}

// Clone returns a deep copy for handing to fetchers as a read-only
// snapshot: a fetcher must not observe or affect a sibling's contributions.
func (c *Container) Clone() *Container {
	clone := &Container{
		Question:      c.Question,
		History:       make([]Turn, len(c.History)),
		Categories:    make([]string, len(c.Categories)),
		OperationKind: c.OperationKind,
		DataBlocks:    make([]DataBlock, len(c.DataBlocks)),
		Errors:        make([]ErrorRecord, len(c.Errors)),
		FinalAnswer:   c.FinalAnswer,
	}
	copy(clone.History, c.History)
	copy(clone.Categories, c.Categories)
	copy(clone.Errors, c.Errors)
	for i, b := range c.DataBlocks {
		rows := make([]Row, len(b.Rows))
		for j, r := range b.Rows {
			row := make(Row, len(r))
			copy(row, r)
			rows[j] = row
		}
		clone.DataBlocks[i] = DataBlock{Source: b.Source, Rows: rows}
	}
	return clone
}
