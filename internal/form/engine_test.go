package form

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

// recordingSubmitter captures the values it was handed.
type recordingSubmitter struct {
	values Values
	err    error
	calls  int
}

func (s *recordingSubmitter) Submit(ctx context.Context, accountID int64, values Values) (SubmitResult, error) {
	s.calls++
	s.values = values
	if s.err != nil {
		return SubmitResult{}, s.err
	}
	return SubmitResult{EntityID: 42, Summary: "ok"}, nil
}

func testFlow(sub Submitter) *Flow {
	return &Flow{
		Name: "add_driver",
		Steps: []StepSpec{
			{Key: "name", Prompt: "driver_name", Kind: KindText},
			{Key: "km_rate", Prompt: "km_rate", Kind: KindDecimal},
			{Key: "side_rate", Prompt: "side_rate", Kind: KindDecimal},
		},
		Submitter: sub,
	}
}

func newTestEngine(flows ...*Flow) *Engine {
	return NewEngine(NewRegistry(flows...), NewMemoryStore(0), nil)
}

func TestEngine_UnknownFlow(t *testing.T) {
	t.Parallel()

	e := newTestEngine(testFlow(&recordingSubmitter{}))

	if _, err := e.Start(context.Background(), "add_spaceship", 1); !errors.Is(err, ErrFlowUnknown) {
		t.Errorf("expected ErrFlowUnknown, got %v", err)
	}
}

func TestEngine_SubmitWithoutSession(t *testing.T) {
	t.Parallel()

	e := newTestEngine(testFlow(&recordingSubmitter{}))

	if _, err := e.Submit(context.Background(), "add_driver", 7, "Ivanov"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestEngine_FullWalkAndCommit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := &recordingSubmitter{}
	e := newTestEngine(testFlow(sub))

	prompt, err := e.Start(ctx, "add_driver", 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if prompt.Key != "name" || prompt.Step != 0 {
		t.Fatalf("first prompt: got %s/%d, want name/0", prompt.Key, prompt.Step)
	}

	res, err := e.Submit(ctx, "add_driver", 1, "Ivanov")
	if err != nil {
		t.Fatalf("submit name: %v", err)
	}
	if res.Kind != ResultNextPrompt || res.Prompt.Key != "km_rate" {
		t.Fatalf("after name: got %s/%s", res.Kind, res.Prompt.Key)
	}

	if res, err = e.Submit(ctx, "add_driver", 1, "25,5"); err != nil {
		t.Fatalf("submit km_rate: %v", err)
	}
	if res, err = e.Submit(ctx, "add_driver", 1, "50"); err != nil {
		t.Fatalf("submit side_rate: %v", err)
	}
	if res.Kind != ResultReadyForConfirmation {
		t.Fatalf("after last step: got %s, want ready for confirmation", res.Kind)
	}
	if got := res.Values.Text("name"); got != "Ivanov" {
		t.Errorf("collected name: got %q", got)
	}

	out, err := e.Confirm(ctx, "add_driver", 1, true)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if out.Kind != OutcomeCommitted || out.EntityID != 42 {
		t.Fatalf("confirm outcome: %+v", out)
	}
	if sub.calls != 1 {
		t.Errorf("submitter calls: got %d, want 1", sub.calls)
	}

	// Session is gone after commit.
	if _, err := e.Submit(ctx, "add_driver", 1, "x"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession after commit, got %v", err)
	}
}

func TestEngine_InvalidInputLeavesSessionUnchanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(testFlow(&recordingSubmitter{}))

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.Submit(ctx, "add_driver", 1, "Ivanov"); err != nil {
		t.Fatalf("submit name: %v", err)
	}

	res, err := e.Submit(ctx, "add_driver", 1, "not-a-number")
	if err != nil {
		t.Fatalf("submit invalid: %v", err)
	}
	if res.Kind != ResultInvalid || res.Reason == "" {
		t.Fatalf("expected invalid result with reason, got %+v", res)
	}
	if res.Prompt.Key != "km_rate" {
		t.Errorf("re-issued prompt: got %s, want km_rate", res.Prompt.Key)
	}

	// The same step still accepts valid input.
	res, err = e.Submit(ctx, "add_driver", 1, "30")
	if err != nil {
		t.Fatalf("submit valid: %v", err)
	}
	if res.Kind != ResultNextPrompt || res.Prompt.Key != "side_rate" {
		t.Fatalf("after recovery: got %s/%s", res.Kind, res.Prompt.Key)
	}
}

func TestEngine_BackResubmitRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(testFlow(&recordingSubmitter{}))

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.Submit(ctx, "add_driver", 1, "Ivanov"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := e.Submit(ctx, "add_driver", 1, "25"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	before, err := e.store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	res, err := e.Back(ctx, "add_driver", 1)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if res.Prompt.Key != "km_rate" {
		t.Fatalf("back prompt: got %s, want km_rate", res.Prompt.Key)
	}

	if _, err := e.Submit(ctx, "add_driver", 1, "25"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	after, err := e.store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if before.Step != after.Step {
		t.Errorf("step: got %d, want %d", after.Step, before.Step)
	}
	if !reflect.DeepEqual(before.Values(), after.Values()) {
		t.Errorf("values diverged: before %+v, after %+v", before.Values(), after.Values())
	}
}

func TestEngine_BackAtStartIsNoOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(testFlow(&recordingSubmitter{}))

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := e.Back(ctx, "add_driver", 1)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if res.Kind != ResultAtStart || res.Prompt.Key != "name" {
		t.Fatalf("expected at-start with first prompt, got %+v", res)
	}
}

func TestEngine_CorrectedLastValueWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := &recordingSubmitter{}
	e := newTestEngine(testFlow(sub))

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, raw := range []string{"Ivanov", "25", "50"} {
		if _, err := e.Submit(ctx, "add_driver", 1, raw); err != nil {
			t.Fatalf("submit %q: %v", raw, err)
		}
	}

	// Go back from confirmation and correct the final value.
	if _, err := e.Back(ctx, "add_driver", 1); err != nil {
		t.Fatalf("back: %v", err)
	}
	if _, err := e.Submit(ctx, "add_driver", 1, "75"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if _, err := e.Confirm(ctx, "add_driver", 1, true); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if got := sub.values.Decimal("side_rate"); !got.Equal(decimal.NewFromInt(75)) {
		t.Errorf("committed side_rate: got %s, want 75", got)
	}
}

func TestEngine_CancelDestroysSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(testFlow(&recordingSubmitter{}))

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.Cancel(ctx, "add_driver", 1); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := e.Submit(ctx, "add_driver", 1, "Ivanov"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession after cancel, got %v", err)
	}

	// Cancel is idempotent.
	if err := e.Cancel(ctx, "add_driver", 1); err != nil {
		t.Errorf("second cancel: %v", err)
	}
}

func TestEngine_StartReplacesExistingSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(testFlow(&recordingSubmitter{}))

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.Submit(ctx, "add_driver", 1, "Ivanov"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Restarting drops the collected value and returns to step 0.
	prompt, err := e.Start(ctx, "add_driver", 1)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if prompt.Step != 0 {
		t.Errorf("restart prompt step: got %d, want 0", prompt.Step)
	}

	sess, err := e.store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(sess.Confirmed) != 0 {
		t.Errorf("restart kept %d confirmed values", len(sess.Confirmed))
	}
}

func TestEngine_SubmitFailureDestroysSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := &recordingSubmitter{err: errors.New("driver no longer exists")}
	e := newTestEngine(testFlow(sub))

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, raw := range []string{"Ivanov", "25", "50"} {
		if _, err := e.Submit(ctx, "add_driver", 1, raw); err != nil {
			t.Fatalf("submit %q: %v", raw, err)
		}
	}

	out, err := e.Confirm(ctx, "add_driver", 1, true)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if out.Kind != OutcomeSubmitFailed || out.Reason == "" {
		t.Fatalf("expected submit failure outcome, got %+v", out)
	}

	// No retry-in-place: the session is gone.
	if _, err := e.Submit(ctx, "add_driver", 1, "x"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession after failed submit, got %v", err)
	}
}

func TestEngine_DiscardOnReject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := &recordingSubmitter{}
	e := newTestEngine(testFlow(sub))

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, raw := range []string{"Ivanov", "25", "50"} {
		if _, err := e.Submit(ctx, "add_driver", 1, raw); err != nil {
			t.Fatalf("submit %q: %v", raw, err)
		}
	}

	out, err := e.Confirm(ctx, "add_driver", 1, false)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if out.Kind != OutcomeDiscarded {
		t.Fatalf("expected discarded, got %s", out.Kind)
	}
	if sub.calls != 0 {
		t.Errorf("submitter called %d times on reject", sub.calls)
	}
}

func TestEngine_BranchNextSelector(t *testing.T) {
	t.Parallel()

	// Downtime-style flow: the kind choice routes to one of two hour steps
	// that share the same validator.
	flow := &Flow{
		Name: "add_downtime",
		Steps: []StepSpec{
			{
				Key:    "kind",
				Prompt: "downtime_kind",
				Kind:   KindChoice,
				Options: func(ctx context.Context) ([]Option, error) {
					return []Option{{ID: 1, Label: "regular"}, {ID: 2, Label: "forced"}}, nil
				},
				Next: func(s *Session, v Value) int {
					if v.ChoiceID == 2 {
						return 2
					}
					return 1
				},
			},
			{
				Key: "regular_hours", Prompt: "hours", Kind: KindPositiveDecimal,
				Next: func(s *Session, v Value) int { return 3 },
			},
			{Key: "forced_hours", Prompt: "hours", Kind: KindPositiveDecimal},
		},
		Submitter: &recordingSubmitter{},
	}

	ctx := context.Background()
	e := newTestEngine(flow)

	if _, err := e.Start(ctx, "add_downtime", 9); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := e.Submit(ctx, "add_downtime", 9, "2")
	if err != nil {
		t.Fatalf("submit kind: %v", err)
	}
	if res.Prompt.Key != "forced_hours" {
		t.Fatalf("forced branch: got %s, want forced_hours", res.Prompt.Key)
	}

	res, err = e.Submit(ctx, "add_downtime", 9, "3,5")
	if err != nil {
		t.Fatalf("submit hours: %v", err)
	}
	if res.Kind != ResultReadyForConfirmation {
		t.Fatalf("expected confirmation after forced hours, got %s", res.Kind)
	}
	if !res.Values.Has("forced_hours") || res.Values.Has("regular_hours") {
		t.Errorf("branch collected wrong keys: %+v", res.Values)
	}
}

func TestEngine_WrongFlowNameIsNoSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(testFlow(&recordingSubmitter{}), &Flow{
		Name:      "add_vehicle",
		Steps:     []StepSpec{{Key: "truck", Prompt: "truck_number", Kind: KindText}},
		Submitter: &recordingSubmitter{},
	})

	if _, err := e.Start(ctx, "add_driver", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.Submit(ctx, "add_vehicle", 1, "A123"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession for other flow, got %v", err)
	}
}
