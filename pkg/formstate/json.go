package formstate

import (
	"encoding/json"
	"fmt"
)

// envelope is the wire form shared by every variant.
type envelope struct {
	Status  Tag    `json:"status"`
	Message string `json:"message,omitempty"`
	Errors  Errors `json:"errors,omitempty"`
}

func (s Default) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{Status: TagDefault})
}

func (s Success) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{Status: TagSuccess, Message: s.Message})
}

func (s Fail) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{Status: TagFail, Errors: s.Errors})
}

// Unmarshal decodes the wire form produced by json.Marshal on a State. The
// result is validated, so a fail payload without errors or an unknown status
// is reported as an InvariantError.
func Unmarshal(data []byte) (State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("formstate: decode: %w", err)
	}

	var state State
	switch env.Status {
	case TagDefault:
		state = DefaultState()
	case TagSuccess:
		state = SuccessState(env.Message)
	case TagFail:
		state = FailState(env.Errors)
	default:
		return nil, &InvariantError{Reason: fmt.Sprintf("unknown status %q", env.Status)}
	}

	if err := Validate(state); err != nil {
		return nil, err
	}
	return state, nil
}
