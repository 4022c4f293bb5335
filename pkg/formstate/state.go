package formstate

// Tag identifies the variant of a State.
type Tag string

const (
	// TagDefault marks a form that has not been submitted yet.
	TagDefault Tag = "default"
	// TagSuccess marks an accepted submission.
	TagSuccess Tag = "success"
	// TagFail marks a rejected submission.
	TagFail Tag = "fail"
)

// FormLevelKey is the Errors key used for messages that are not attached to
// a single field, such as persistence failures.
const FormLevelKey = ""

// Errors maps a field path to the single message displayed for it.
type Errors map[string]string

// Clone returns a copy of e. A nil map clones to nil.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for path, message := range e {
		out[path] = message
	}
	return out
}

// Form returns the form-level message when present.
func (e Errors) Form() (string, bool) {
	message, ok := e[FormLevelKey]
	return message, ok
}

// Field returns the message attached to path.
func (e Errors) Field(path string) (string, bool) {
	if path == FormLevelKey {
		return "", false
	}
	message, ok := e[path]
	return message, ok
}

// State is the outcome of a form submission. The interface is sealed; use
// DefaultState, SuccessState or FailState to build values.
type State interface {
	Tag() Tag
	accept(Visitor)
	sealed()
}

// Default is the state of a form before any submission.
type Default struct{}

// Success carries the human readable message of an accepted submission.
type Success struct {
	Message string
}

// Fail carries the per-field messages of a rejected submission.
type Fail struct {
	Errors Errors
}

func (Default) Tag() Tag { return TagDefault }
func (Success) Tag() Tag { return TagSuccess }
func (Fail) Tag() Tag    { return TagFail }

func (s Default) accept(v Visitor) { v.VisitDefault(s) }
func (s Success) accept(v Visitor) { v.VisitSuccess(s) }
func (s Fail) accept(v Visitor)    { v.VisitFail(s) }

func (Default) sealed() {}
func (Success) sealed() {}
func (Fail) sealed()    {}

// DefaultState returns the Default variant.
func DefaultState() State {
	return Default{}
}

// SuccessState wraps message verbatim. No trimming or length cap is applied.
func SuccessState(message string) State {
	return Success{Message: message}
}

// FailState wraps errors verbatim. Callers are expected to pass a non-empty
// map; Validate reports an InvariantError otherwise.
func FailState(errors Errors) State {
	return Fail{Errors: errors}
}
