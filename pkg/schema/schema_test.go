package schema_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formaction/pkg/schema"
)

func TestLoadFSParsesJSONAndYAML(t *testing.T) {
	store, err := schema.LoadFS(os.DirFS("testdata"))
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}

	if diff := cmp.Diff([]string{"login", "signup"}, store.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	login, ok := store.Get("login")
	if !ok {
		t.Fatalf("login schema missing")
	}
	want := []schema.Field{
		{
			Name:            "username",
			Label:           "Username",
			Trim:            true,
			Sanitize:        "strict",
			RequiredMessage: "Admin username is required.",
			Rules:           []schema.Rule{{Kind: schema.RuleRequired, Message: "Admin username is required."}},
		},
		{
			Name:   "password",
			Label:  "Password",
			Widget: "password",
			Rules:  []schema.Rule{{Kind: schema.RuleRequired, Message: "Password is required."}},
		},
	}
	if diff := cmp.Diff(want, login.Fields); diff != "" {
		t.Fatalf("login fields mismatch (-want +got):\n%s", diff)
	}

	signup, _ := store.Get("signup")
	age, ok := signup.Field("age")
	if !ok || age.Type != schema.TypeInt || !age.Optional {
		t.Fatalf("unexpected age field: %+v", age)
	}
}

func TestLoadFSRejectsDuplicateNames(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("name: dup\nfields:\n  - name: x\n")},
		"b.yaml": {Data: []byte("name: dup\nfields:\n  - name: y\n")},
	}
	if _, err := schema.LoadFS(fsys); err == nil || !strings.Contains(err.Error(), "duplicate schema") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestParseDerivesNameFromSource(t *testing.T) {
	s, err := schema.Parse([]byte("fields:\n  - name: title\n"), "forms/create_post.yml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "create_post" {
		t.Fatalf("name = %q", s.Name)
	}
}

func TestNewReportsEveryProblem(t *testing.T) {
	_, err := schema.New("broken",
		schema.Field{Name: ""},
		schema.Field{Name: "age", Type: "decimal"},
		schema.Field{Name: "code", Rules: []schema.Rule{{Kind: schema.RulePattern, Value: "("}}},
		schema.Field{Name: "code"},
		schema.Field{Name: "title", Rules: []schema.Rule{
			{Kind: schema.RuleMin, Value: "1"},
			{Kind: schema.RuleMinLength, Value: "-1"},
			{Kind: schema.RuleMatches, Value: "missing"},
			{Kind: "unknown"},
		}},
		schema.Field{Name: "bio", Sanitize: "html"},
	)

	var invalid *schema.InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidError, got %v", err)
	}
	if len(invalid.Problems) != 9 {
		t.Fatalf("expected 9 problems, got %d: %v", len(invalid.Problems), invalid.Problems)
	}
}

func TestNewRejectsEmptySchema(t *testing.T) {
	if _, err := schema.New("empty"); err == nil {
		t.Fatalf("expected error for schema without fields")
	}
}

func TestFieldNormalize(t *testing.T) {
	cases := []struct {
		name  string
		field schema.Field
		in    string
		want  string
	}{
		{name: "untouched", field: schema.Field{}, in: "  <b>x</b> ", want: "  <b>x</b> "},
		{name: "trim", field: schema.Field{Trim: true}, in: "  admin ", want: "admin"},
		{name: "strict", field: schema.Field{Sanitize: schema.SanitizeStrict, Trim: true}, in: " <script>alert(1)</script><b>bold</b> ", want: "bold"},
		{name: "trim after strip", field: schema.Field{Sanitize: schema.SanitizeStrict, Trim: true}, in: "<b> admin</b>", want: "admin"},
		{name: "ugc", field: schema.Field{Sanitize: schema.SanitizeUGC}, in: `<b onclick="x()">bold</b>`, want: "<b>bold</b>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.field.Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRuleMessageDefaults(t *testing.T) {
	field := schema.Field{Name: "username", Label: "Username"}
	if got := (schema.Rule{Kind: schema.RuleMinLength, Value: "3"}).MessageFor(field); got != "Username must be at least 3 characters." {
		t.Fatalf("got %q", got)
	}
	if got := (schema.Rule{Kind: schema.RuleRequired, Message: " Custom "}).MessageFor(field); got != "Custom" {
		t.Fatalf("got %q", got)
	}
	if got := (schema.Field{Type: schema.TypeInt}).CoercionMessage(); got != "Expected integer" {
		t.Fatalf("got %q", got)
	}
	if got := (schema.Field{}).MissingMessage(); got != "Required" {
		t.Fatalf("got %q", got)
	}
}

const adminOpenAPI = `
openapi: 3.0.3
info:
  title: Admin
  version: 1.0.0
paths:
  /admins:
    post:
      operationId: createAdmin
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              x-formaction-order: [username, email, password, confirm]
              required: [username, password]
              properties:
                username:
                  type: string
                  title: Username
                  minLength: 3
                  maxLength: 32
                  pattern: '^[a-z0-9_]+$'
                  x-formaction-messages:
                    required: Admin username is required.
                    minLength: Username is too short.
                email:
                  type: string
                  format: email
                password:
                  type: string
                  format: password
                confirm:
                  type: string
                  x-formaction-matches: password
                level:
                  type: integer
                  minimum: 1
                  maximum: 5
                role:
                  type: string
                  enum: [owner, editor]
      responses:
        '201':
          description: created
`

func TestFromOpenAPI(t *testing.T) {
	s, err := schema.FromOpenAPI(context.Background(), []byte(adminOpenAPI), "createAdmin")
	if err != nil {
		t.Fatalf("FromOpenAPI: %v", err)
	}

	if diff := cmp.Diff([]string{"username", "email", "password", "confirm", "level", "role"}, s.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	username, _ := s.Field("username")
	wantUsername := schema.Field{
		Name:            "username",
		Type:            schema.TypeString,
		Label:           "Username",
		Trim:            true,
		RequiredMessage: "Admin username is required.",
		Rules: []schema.Rule{
			{Kind: schema.RuleRequired, Message: "Admin username is required."},
			{Kind: schema.RuleMinLength, Value: "3", Message: "Username is too short."},
			{Kind: schema.RuleMaxLength, Value: "32"},
			{Kind: schema.RulePattern, Value: "^[a-z0-9_]+$"},
		},
	}
	if diff := cmp.Diff(wantUsername, username); diff != "" {
		t.Fatalf("username mismatch (-want +got):\n%s", diff)
	}

	password, _ := s.Field("password")
	if password.Widget != "password" || password.Optional {
		t.Fatalf("unexpected password field: %+v", password)
	}

	email, _ := s.Field("email")
	if !email.Optional || len(email.Rules) != 1 || email.Rules[0].Kind != schema.RuleEmail {
		t.Fatalf("unexpected email field: %+v", email)
	}

	level, _ := s.Field("level")
	wantLevel := []schema.Rule{{Kind: schema.RuleMin, Value: "1"}, {Kind: schema.RuleMax, Value: "5"}}
	if level.Type != schema.TypeInt {
		t.Fatalf("level type = %q", level.Type)
	}
	if diff := cmp.Diff(wantLevel, level.Rules); diff != "" {
		t.Fatalf("level rules mismatch (-want +got):\n%s", diff)
	}

	confirm, _ := s.Field("confirm")
	if diff := cmp.Diff([]schema.Rule{{Kind: schema.RuleMatches, Value: "password"}}, confirm.Rules); diff != "" {
		t.Fatalf("confirm rules mismatch (-want +got):\n%s", diff)
	}

	role, _ := s.Field("role")
	if diff := cmp.Diff([]schema.Rule{{Kind: schema.RuleOneOf, Values: []string{"owner", "editor"}}}, role.Rules); diff != "" {
		t.Fatalf("role rules mismatch (-want +got):\n%s", diff)
	}
}

func TestFromOpenAPIUnknownOperation(t *testing.T) {
	_, err := schema.FromOpenAPI(context.Background(), []byte(adminOpenAPI), "deleteAdmin")
	if err == nil || !strings.Contains(err.Error(), "operation not found") {
		t.Fatalf("expected operation not found, got %v", err)
	}
}

func TestStoreMergeOverrides(t *testing.T) {
	base := schema.NewStore()
	if err := base.Add(schema.MustNew("login", schema.Field{Name: "username"})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	override := schema.NewStore()
	if err := override.Add(schema.MustNew("login", schema.Field{Name: "email"})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	base.Merge(override)

	got, _ := base.Get("login")
	if diff := cmp.Diff([]string{"email"}, got.Names()); diff != "" {
		t.Fatalf("merged names mismatch (-want +got):\n%s", diff)
	}
}
