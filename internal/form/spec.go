package form

import "context"

// OptionsFunc generates the option set for a choice step. It is re-invoked
// when the operator navigates back to the step, so dependent choices (e.g.
// the vehicle list) are always current.
type OptionsFunc func(ctx context.Context) ([]Option, error)

// NextFunc selects the next step index after a value is accepted. A nil
// NextFunc advances to the following step. Returning an index at or past the
// end of the step table moves the session to confirmation.
type NextFunc func(s *Session, v Value) int

// StepSpec describes one step of a flow: its result key, prompt key,
// validator kind, and optional option generator and branch selector.
type StepSpec struct {
	Key     string
	Prompt  string
	Kind    ValueKind
	Options OptionsFunc
	Next    NextFunc
}

// Summary is the computed preview shown at the confirmation step, e.g. the
// itemized cost breakdown of a trip about to be created.
type Summary map[string]string

// SummarizeFunc computes the confirmation summary from the collected values.
type SummarizeFunc func(ctx context.Context, values Values) (Summary, error)

// SubmitResult is returned by a Submitter on successful commit.
type SubmitResult struct {
	EntityID int64
	Summary  string
}

// Submitter persists the collected values of a completed flow.
type Submitter interface {
	Submit(ctx context.Context, accountID int64, values Values) (SubmitResult, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, accountID int64, values Values) (SubmitResult, error)

func (f SubmitterFunc) Submit(ctx context.Context, accountID int64, values Values) (SubmitResult, error) {
	return f(ctx, accountID, values)
}

// Flow is the static field table of one guided entry sequence.
type Flow struct {
	Name      string
	Steps     []StepSpec
	Summarize SummarizeFunc
	Submitter Submitter
}

// Registry is the closed dispatch table from flow name to field table.
type Registry struct {
	flows map[string]*Flow
}

// NewRegistry creates a registry over the given flows.
func NewRegistry(flows ...*Flow) *Registry {
	r := &Registry{flows: make(map[string]*Flow, len(flows))}
	for _, f := range flows {
		r.flows[f.Name] = f
	}
	return r
}

// Get looks up a flow by name.
func (r *Registry) Get(name string) (*Flow, bool) {
	f, ok := r.flows[name]
	return f, ok
}
