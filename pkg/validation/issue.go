package validation

import (
	"strings"

	"github.com/goliatone/go-formaction/pkg/formstate"
)

// Issue is a single violated constraint with the dotted path of the field it
// belongs to. Form-level issues use an empty path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Failure is the ordered list of issues found while validating a submission.
// Several issues may share a path; order is the order constraints ran in.
type Failure []Issue

// Error joins every issue so a Failure can travel as an error value.
func (f Failure) Error() string {
	if len(f) == 0 {
		return "validation: no issues"
	}
	parts := make([]string, 0, len(f))
	for _, issue := range f {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Add appends an issue for path.
func (f *Failure) Add(path, message string) {
	*f = append(*f, Issue{Path: path, Message: message})
}

// Has reports whether at least one issue targets path.
func (f Failure) Has(path string) bool {
	for _, issue := range f {
		if issue.Path == path {
			return true
		}
	}
	return false
}

// Paths returns the distinct paths in first-seen order.
func (f Failure) Paths() []string {
	if len(f) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(f))
	out := make([]string, 0, len(f))
	for _, issue := range f {
		if _, ok := seen[issue.Path]; ok {
			continue
		}
		seen[issue.Path] = struct{}{}
		out = append(out, issue.Path)
	}
	return out
}

// Project collapses a Failure into one message per path. The first issue
// recorded for a path wins, so the order constraints are declared in decides
// which message a user sees. An empty failure yields an empty map.
func Project(failure Failure) formstate.Errors {
	out := make(formstate.Errors, len(failure))
	for _, issue := range failure {
		if _, exists := out[issue.Path]; exists {
			continue
		}
		out[issue.Path] = issue.Message
	}
	return out
}
