package transaction

import (
	"fmt"

	"carteira/internal/domain/impact"
)

// State tracks a create or edit through validation, impact check and commit.
type State string

const (
	StateDraft               State = "DRAFT"
	StateValidated           State = "VALIDATED"
	StateImpactChecked       State = "IMPACT_CHECKED"
	StatePendingConfirmation State = "PENDING_CONFIRMATION"
	StateCommitted           State = "COMMITTED"
)

var transitions = map[State][]State{
	StateDraft:               {StateValidated},
	StateValidated:           {StateImpactChecked, StatePendingConfirmation, StateDraft},
	StateImpactChecked:       {StateCommitted, StateDraft},
	StatePendingConfirmation: {StateImpactChecked, StateDraft},
}

// CanTransition reports whether the flow may move from s to next.
// Committed is terminal; every other state can be cancelled back to Draft.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Outcome is what a commit attempt produced. ID is set once committed.
// Impact is nil for operations that take money from no account.
type Outcome struct {
	State  State
	ID     string
	Impact *impact.Result
}

// advance walks through each state in order.
func (o *Outcome) advance(states ...State) error {
	for _, next := range states {
		if !o.State.CanTransition(next) {
			return fmt.Errorf("invalid state transition %s -> %s", o.State, next)
		}
		o.State = next
	}
	return nil
}
