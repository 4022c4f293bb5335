package schema_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formaction/pkg/schema"
	"github.com/goliatone/go-formaction/pkg/testsupport"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		arg      string
		kind     schema.SourceKind
		location string
		wantErr  bool
	}{
		{arg: "forms/./login.yaml", kind: schema.SourceKindFile, location: "forms/login.yaml"},
		{arg: " https://example.com/openapi.yaml ", kind: schema.SourceKindURL, location: "https://example.com/openapi.yaml"},
		{arg: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			src, err := schema.ParseSource(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", src)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSource: %v", err)
			}
			if src.Kind() != tt.kind || src.Location() != tt.location {
				t.Fatalf("got %s %q", src.Kind(), src.Location())
			}
		})
	}
}

func TestReadFileSource(t *testing.T) {
	doc, err := schema.Read(context.Background(), schema.SourceFromFile("testdata/login.yaml"), nil, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	s, err := doc.Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if diff := cmp.Diff([]string{"username", "password"}, s.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/reset.yaml": {Data: []byte("fields:\n  - name: email\n    rules:\n      - kind: email\n")},
		"forms/empty.yaml": {Data: []byte{}},
	}

	doc, err := schema.Read(context.Background(), schema.SourceFromFS("forms/reset.yaml"), fsys, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	s, err := doc.Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if s.Name != "reset" {
		t.Fatalf("name = %q", s.Name)
	}

	if _, err := schema.Read(context.Background(), schema.SourceFromFS("forms/empty.yaml"), fsys, nil); err == nil {
		t.Fatalf("expected empty document error")
	}
	if _, err := schema.Read(context.Background(), schema.SourceFromFS("forms/reset.yaml"), nil, nil); err == nil {
		t.Fatalf("expected missing filesystem error")
	}
}

func TestReadURLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(adminOpenAPI))
	}))
	defer srv.Close()

	doc, err := schema.Read(context.Background(), schema.SourceFromURL(srv.URL+"/openapi.yaml"), nil, srv.Client())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	s, err := doc.Operation(context.Background(), "createAdmin")
	if err != nil {
		t.Fatalf("Operation: %v", err)
	}
	if _, ok := s.Field("username"); !ok {
		t.Fatalf("username field missing")
	}

	_, err = schema.Read(context.Background(), schema.SourceFromURL(srv.URL+"/missing"), nil, srv.Client())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestReadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := schema.Read(ctx, schema.SourceFromFile("testdata/login.yaml"), nil, nil); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSignupFixture(t *testing.T) {
	s := testsupport.LoadSchema(t, "testdata/signup.json")

	age, ok := s.Field("age")
	if !ok {
		t.Fatalf("age field missing")
	}
	if diff := cmp.Diff([]schema.Rule{{Kind: schema.RuleMin, Value: "18"}}, age.Rules); diff != "" {
		t.Fatalf("age rules mismatch (-want +got):\n%s", diff)
	}
	if err := s.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
}
