package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
)

// maxRemoteDocument caps the size of schema documents fetched over HTTP.
const maxRemoteDocument = 4 << 20

// Document wraps the raw schema payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("schema: %s is empty", src.Location())
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Schema parses the document as a JSON or YAML form declaration.
func (d Document) Schema() (*Schema, error) {
	return Parse(d.raw, d.Location())
}

// Operation builds a schema from the request body of operationID, treating
// the document as an OpenAPI 3 description.
func (d Document) Operation(ctx context.Context, operationID string) (*Schema, error) {
	s, err := FromOpenAPI(ctx, d.raw, operationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Location(), err)
	}
	return s, nil
}

// Read loads the document behind src. fsys is only consulted for FS sources
// and may be nil otherwise. URL sources are fetched with client, or
// http.DefaultClient when client is nil.
func Read(ctx context.Context, src Source, fsys fs.FS, client *http.Client) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		raw []byte
		err error
	)
	switch src.Kind() {
	case SourceKindFile:
		raw, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if fsys == nil {
			return Document{}, fmt.Errorf("schema: no filesystem for %s", src.Location())
		}
		raw, err = fs.ReadFile(fsys, src.Location())
	case SourceKindURL:
		raw, err = fetch(ctx, client, src.Location())
	default:
		return Document{}, fmt.Errorf("schema: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", src.Location(), err)
	}
	return NewDocument(src, raw)
}

func fetch(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxRemoteDocument))
}
