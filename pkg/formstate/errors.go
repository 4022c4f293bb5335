package formstate

import "fmt"

// InvariantError reports a State that the protocol does not allow, such as a
// Fail without errors. It indicates a programming mistake and is never
// converted into a user facing state.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("formstate: invariant violation: %s", e.Reason)
}

// Validate checks the protocol invariants of state.
func Validate(state State) error {
	switch s := state.(type) {
	case nil:
		return &InvariantError{Reason: "state is nil"}
	case Default, Success:
		return nil
	case Fail:
		if len(s.Errors) == 0 {
			return &InvariantError{Reason: "fail state without errors"}
		}
		return nil
	default:
		return &InvariantError{Reason: fmt.Sprintf("unknown state %T", state)}
	}
}
