package form

import "errors"

var (
	// ErrFlowUnknown is returned when no field table is registered for a flow name.
	ErrFlowUnknown = errors.New("unknown flow")

	// ErrNoActiveSession is returned when an account has no in-progress session
	// for the addressed flow.
	ErrNoActiveSession = errors.New("no active session")

	// ErrNotAwaitingConfirmation is returned when confirm is called before the
	// final step has been collected.
	ErrNotAwaitingConfirmation = errors.New("session not awaiting confirmation")
)
