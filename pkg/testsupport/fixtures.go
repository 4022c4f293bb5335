package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/inconshreveable/log15"

	"github.com/goliatone/go-formaction/pkg/schema"
)

// LoadSchema parses a schema fixture. Testing helpers fail the test on error
// to keep setup concise.
func LoadSchema(t *testing.T, path string) *schema.Schema {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	s, err := schema.Parse(data, path)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

// LogRecorder collects log records for assertions.
type LogRecorder struct {
	mu      sync.Mutex
	records []*log15.Record
}

// Logger returns a logger writing into the recorder.
func (r *LogRecorder) Logger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.FuncHandler(func(rec *log15.Record) error {
		r.mu.Lock()
		r.records = append(r.records, rec)
		r.mu.Unlock()
		return nil
	}))
	return logger
}

// Records returns the records at lvl.
func (r *LogRecorder) Records(lvl log15.Lvl) []*log15.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*log15.Record
	for _, rec := range r.records {
		if rec.Lvl == lvl {
			out = append(out, rec)
		}
	}
	return out
}

// Invalidations records the tags passed to Invalidate, in call order.
type Invalidations struct {
	mu   sync.Mutex
	tags []string
}

// Invalidate satisfies action.Invalidator.
func (i *Invalidations) Invalidate(_ context.Context, tag string) {
	i.mu.Lock()
	i.tags = append(i.tags, tag)
	i.mu.Unlock()
}

// Tags returns a copy of the recorded tags.
func (i *Invalidations) Tags() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.tags...)
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
