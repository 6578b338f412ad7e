package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultKind discriminates the outcome of submitting a value or navigating.
type ResultKind string

const (
	ResultNextPrompt           ResultKind = "NEXT_PROMPT"
	ResultInvalid              ResultKind = "INVALID"
	ResultReadyForConfirmation ResultKind = "READY_FOR_CONFIRMATION"
	ResultAtStart              ResultKind = "AT_START"
)

// Prompt describes the step the operator should answer next.
type Prompt struct {
	Flow    string   `json:"flow"`
	Step    int      `json:"step"`
	Key     string   `json:"key"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options,omitempty"`
}

// StepResult is the outcome of Submit or Back.
type StepResult struct {
	Kind    ResultKind `json:"kind"`
	Prompt  *Prompt    `json:"prompt,omitempty"`
	Reason  string     `json:"reason,omitempty"`
	Values  Values     `json:"values,omitempty"`
	Summary Summary    `json:"summary,omitempty"`
}

// OutcomeKind discriminates the result of Confirm.
type OutcomeKind string

const (
	OutcomeCommitted    OutcomeKind = "COMMITTED"
	OutcomeDiscarded    OutcomeKind = "DISCARDED"
	OutcomeSubmitFailed OutcomeKind = "SUBMIT_FAILED"
)

// SubmitOutcome is the result of Confirm.
type SubmitOutcome struct {
	Kind     OutcomeKind `json:"kind"`
	EntityID int64       `json:"entity_id,omitempty"`
	Summary  string      `json:"summary,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// Engine drives sessions through their flow's field table. It holds no
// per-session state itself; everything lives in the SessionStore.
type Engine struct {
	flows  *Registry
	store  SessionStore
	logger *zap.Logger
}

// NewEngine creates an Engine over the given flow registry and session store.
func NewEngine(flows *Registry, store SessionStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{flows: flows, store: store, logger: logger}
}

// Start begins a flow for an account, discarding any prior in-progress
// session the account had, and returns the first prompt.
func (e *Engine) Start(ctx context.Context, flowName string, accountID int64) (*Prompt, error) {
	flow, ok := e.flows.Get(flowName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowUnknown, flowName)
	}

	now := time.Now()
	sess := &Session{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Flow:      flowName,
		Step:      0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	e.logger.Info("flow started",
		zap.String("flow", flowName),
		zap.Int64("account_id", accountID),
		zap.String("session_id", sess.ID),
	)

	return e.prompt(ctx, flow, sess.Step)
}

// Submit validates raw input against the current step. On success the value
// is pushed and the session advances; past the last step the collected
// values and computed summary are returned for confirmation. On validation
// failure the session is unchanged and the same prompt is re-issued.
func (e *Engine) Submit(ctx context.Context, flowName string, accountID int64, raw string) (*StepResult, error) {
	flow, sess, err := e.active(ctx, flowName, accountID)
	if err != nil {
		return nil, err
	}

	if sess.AwaitingConfirm {
		// Input while waiting on confirm re-issues the confirmation view.
		return e.confirmationResult(ctx, flow, sess)
	}

	step := &flow.Steps[sess.Step]

	var options []Option
	if step.Options != nil {
		options, err = step.Options(ctx)
		if err != nil {
			return nil, err
		}
	}

	value, err := parseValue(step.Kind, raw, options)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			prompt, perr := e.prompt(ctx, flow, sess.Step)
			if perr != nil {
				return nil, perr
			}
			return &StepResult{Kind: ResultInvalid, Reason: verr.Reason, Prompt: prompt}, nil
		}
		return nil, err
	}

	sess.push(step.Key, value)

	next := sess.Step + 1
	if step.Next != nil {
		next = step.Next(sess, value)
	}

	if next >= len(flow.Steps) {
		sess.AwaitingConfirm = true
		sess.UpdatedAt = time.Now()
		if err := e.store.Put(ctx, sess); err != nil {
			return nil, err
		}
		return e.confirmationResult(ctx, flow, sess)
	}

	sess.Step = next
	sess.UpdatedAt = time.Now()
	if err := e.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	prompt, err := e.prompt(ctx, flow, sess.Step)
	if err != nil {
		return nil, err
	}
	return &StepResult{Kind: ResultNextPrompt, Prompt: prompt}, nil
}

// Back pops one confirmed value and restores the previous step's prompt,
// regenerating any dependent option set. At the first step it is a no-op.
func (e *Engine) Back(ctx context.Context, flowName string, accountID int64) (*StepResult, error) {
	flow, sess, err := e.active(ctx, flowName, accountID)
	if err != nil {
		return nil, err
	}

	popped, ok := sess.pop()
	if !ok {
		prompt, perr := e.prompt(ctx, flow, sess.Step)
		if perr != nil {
			return nil, perr
		}
		return &StepResult{Kind: ResultAtStart, Prompt: prompt}, nil
	}

	sess.Step = popped.Step
	sess.AwaitingConfirm = false
	sess.UpdatedAt = time.Now()
	if err := e.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	prompt, err := e.prompt(ctx, flow, sess.Step)
	if err != nil {
		return nil, err
	}
	return &StepResult{Kind: ResultNextPrompt, Prompt: prompt}, nil
}

// Cancel destroys the account's session for the flow. It is idempotent and
// always succeeds, including when no session exists.
func (e *Engine) Cancel(ctx context.Context, flowName string, accountID int64) error {
	sess, err := e.store.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if sess == nil || sess.Flow != flowName {
		return nil
	}
	return e.store.Delete(ctx, accountID)
}

// Confirm finalizes a session that reached the confirmation step. When
// accepted, the flow's Submitter persists the collected values; the session
// is destroyed whether the submitter succeeds or fails -- partially entered
// data is never kept once the flow leaves confirmation.
func (e *Engine) Confirm(ctx context.Context, flowName string, accountID int64, accept bool) (*SubmitOutcome, error) {
	flow, sess, err := e.active(ctx, flowName, accountID)
	if err != nil {
		return nil, err
	}

	if !sess.AwaitingConfirm {
		return nil, ErrNotAwaitingConfirmation
	}

	if !accept {
		if err := e.store.Delete(ctx, accountID); err != nil {
			return nil, err
		}
		e.logger.Info("flow discarded",
			zap.String("flow", flowName),
			zap.Int64("account_id", accountID),
		)
		return &SubmitOutcome{Kind: OutcomeDiscarded}, nil
	}

	result, submitErr := flow.Submitter.Submit(ctx, accountID, sess.Values())

	if err := e.store.Delete(ctx, accountID); err != nil {
		return nil, err
	}

	if submitErr != nil {
		e.logger.Warn("flow submit failed",
			zap.String("flow", flowName),
			zap.Int64("account_id", accountID),
			zap.Error(submitErr),
		)
		return &SubmitOutcome{Kind: OutcomeSubmitFailed, Reason: submitErr.Error()}, nil
	}

	e.logger.Info("flow committed",
		zap.String("flow", flowName),
		zap.Int64("account_id", accountID),
		zap.Int64("entity_id", result.EntityID),
	)

	return &SubmitOutcome{
		Kind:     OutcomeCommitted,
		EntityID: result.EntityID,
		Summary:  result.Summary,
	}, nil
}

// active resolves the flow and the account's matching session.
func (e *Engine) active(ctx context.Context, flowName string, accountID int64) (*Flow, *Session, error) {
	flow, ok := e.flows.Get(flowName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrFlowUnknown, flowName)
	}

	sess, err := e.store.Get(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil || sess.Flow != flowName {
		return nil, nil, ErrNoActiveSession
	}

	return flow, sess, nil
}

// prompt builds the Prompt for a step, evaluating its option generator.
func (e *Engine) prompt(ctx context.Context, flow *Flow, step int) (*Prompt, error) {
	spec := &flow.Steps[step]

	var options []Option
	if spec.Options != nil {
		var err error
		options, err = spec.Options(ctx)
		if err != nil {
			return nil, err
		}
	}

	return &Prompt{
		Flow:    flow.Name,
		Step:    step,
		Key:     spec.Key,
		Prompt:  spec.Prompt,
		Options: options,
	}, nil
}

// confirmationResult assembles the ReadyForConfirmation view, computing the
// flow's summary when one is defined.
func (e *Engine) confirmationResult(ctx context.Context, flow *Flow, sess *Session) (*StepResult, error) {
	values := sess.Values()

	var summary Summary
	if flow.Summarize != nil {
		var err error
		summary, err = flow.Summarize(ctx, values)
		if err != nil {
			// A summary failure means a referenced entity vanished mid-flow;
			// the session is unrecoverable, same as a submit failure.
			_ = e.store.Delete(ctx, sess.AccountID)
			return nil, err
		}
	}

	return &StepResult{
		Kind:    ResultReadyForConfirmation,
		Values:  values,
		Summary: summary,
	}, nil
}
