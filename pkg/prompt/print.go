package prompt

import (
	"fmt"
	"io"
	"sort"

	"github.com/goliatone/go-formaction/pkg/formstate"
)

// Theme holds the prefixes used when printing states.
type Theme struct {
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme is used by Print.
var DefaultTheme = Theme{SuccessPrefix: "✔ ", ErrorPrefix: "✘ "}

// Print writes state to w using DefaultTheme.
func Print(w io.Writer, state formstate.State) error {
	return DefaultTheme.Print(w, state)
}

// Print writes a human readable rendition of state. Default prints nothing;
// a form level error is printed before field errors, which follow in path
// order.
func (t Theme) Print(w io.Writer, state formstate.State) error {
	if err := formstate.Validate(state); err != nil {
		return err
	}
	p := &printer{w: w, theme: t}
	formstate.Match(state, p)
	return p.err
}

type printer struct {
	w     io.Writer
	theme Theme
	err   error
}

func (p *printer) VisitDefault(formstate.Default) {}

func (p *printer) VisitSuccess(s formstate.Success) {
	p.printf("%s%s\n", p.theme.SuccessPrefix, s.Message)
}

func (p *printer) VisitFail(s formstate.Fail) {
	if msg, ok := s.Errors.Form(); ok {
		p.printf("%s%s\n", p.theme.ErrorPrefix, msg)
	}
	paths := make([]string, 0, len(s.Errors))
	for path := range s.Errors {
		if path != formstate.FormLevelKey {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	for _, path := range paths {
		p.printf("%s%s: %s\n", p.theme.ErrorPrefix, path, s.Errors[path])
	}
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
