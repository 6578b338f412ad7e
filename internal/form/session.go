package form

import "time"

// StepValue is one confirmed entry on the session's value stack.
type StepValue struct {
	Step  int    `json:"step"`
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Session is the in-progress state of one flow for one account.
//
// Confirmed records each accepted step in order; for a linear flow its
// length always equals Step. Navigating back pops exactly one entry and
// restores that step's prompt. The struct round-trips through JSON so it can
// live in Redis between inbound events.
type Session struct {
	ID              string      `json:"id"`
	AccountID       int64       `json:"account_id"`
	Flow            string      `json:"flow"`
	Step            int         `json:"step"`
	Confirmed       []StepValue `json:"confirmed"`
	AwaitingConfirm bool        `json:"awaiting_confirm"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Values builds the collected result map from the confirmed stack.
func (s *Session) Values() Values {
	out := make(Values, len(s.Confirmed))
	for _, sv := range s.Confirmed {
		out[sv.Key] = sv.Value
	}
	return out
}

// push records an accepted value for the current step.
func (s *Session) push(key string, v Value) {
	s.Confirmed = append(s.Confirmed, StepValue{Step: s.Step, Key: key, Value: v})
}

// pop removes the most recent confirmed value and returns it.
// The second return is false when the stack is empty.
func (s *Session) pop() (StepValue, bool) {
	if len(s.Confirmed) == 0 {
		return StepValue{}, false
	}
	last := s.Confirmed[len(s.Confirmed)-1]
	s.Confirmed = s.Confirmed[:len(s.Confirmed)-1]
	return last, true
}
