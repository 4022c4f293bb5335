package view

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formaction/pkg/decode"
	"github.com/goliatone/go-formaction/pkg/formstate"
	"github.com/goliatone/go-formaction/pkg/schema"
	"github.com/goliatone/go-formaction/pkg/testsupport"
)

func loginSchema() *schema.Schema {
	return schema.MustNew("login",
		schema.Field{Name: "username", Label: "Username", Rules: []schema.Rule{{Kind: schema.RuleRequired}}},
		schema.Field{Name: "password", Label: "Password", Widget: "password"},
		schema.Field{Name: "remember", Type: schema.TypeBool, Optional: true},
	)
}

func TestNewForm(t *testing.T) {
	values := decode.FromPairs("username", "ada", "password", "secret")

	t.Run("default", func(t *testing.T) {
		form := NewForm(loginSchema(), formstate.DefaultState(), nil)
		assert.Equal(t, "default", form.Status)
		require.Len(t, form.Fields, 3)
		assert.Equal(t, Field{Name: "username", Label: "Username", Type: "text", Required: true}, form.Fields[0])
		assert.Equal(t, "password", form.Fields[1].Type)
		assert.Equal(t, Field{Name: "remember", Label: "remember", Type: "checkbox"}, form.Fields[2])
	})

	t.Run("fail keeps values but not passwords", func(t *testing.T) {
		state := formstate.FailState(formstate.Errors{
			"username": "Taken.",
			"":         "Try again.",
		})
		form := NewForm(loginSchema(), state, values)
		assert.Equal(t, "fail", form.Status)
		assert.Equal(t, "Try again.", form.FormError)
		assert.Equal(t, "ada", form.Fields[0].Value)
		assert.Equal(t, "Taken.", form.Fields[0].Error)
		assert.Empty(t, form.Fields[1].Value)
		assert.Empty(t, form.Fields[1].Error)
	})

	t.Run("success clears values", func(t *testing.T) {
		form := NewForm(loginSchema(), formstate.SuccessState("Login: Success"), values)
		assert.Equal(t, "success", form.Status)
		assert.Equal(t, "Login: Success", form.Message)
		assert.Empty(t, form.Fields[0].Value)
	})
}

func TestEngineRendersLoginPage(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	form := NewForm(loginSchema(), formstate.FailState(formstate.Errors{
		"username": "Admin username is required.",
		"":         "<b>bad</b>",
	}), decode.FromPairs("username", "", "password", "secret"))
	form.Action = "/login"
	form.Submit = "Sign in"

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.Render("login", Page{Lang: "en", Title: "Admin login", Form: form}, w)
	})

	assert.Equal(t, result, written)
	assert.Contains(t, result, "<title>Admin login</title>")
	assert.Contains(t, result, `action="/login"`)
	assert.Contains(t, result, `<p class="field__error" id="username-error">Admin username is required.</p>`)
	assert.Contains(t, result, "&lt;b&gt;bad&lt;/b&gt;")
	assert.NotContains(t, result, "secret")
	assert.Contains(t, result, `type="checkbox"`)
	assert.Contains(t, result, "Sign in")
}

func TestEngineRendersAdminsPage(t *testing.T) {
	engine, err := New(WithGlobalData(map[string]any{"lang": "es"}))
	require.NoError(t, err)

	page := Page{
		Title:   "Administrators",
		Summary: "1 administrator",
		Admins: []map[string]string{
			{"id": "id-1", "username": "ada", "email": "ada@example.com"},
		},
		Form: NewForm(loginSchema(), formstate.SuccessState("Admin ada created."), nil),
	}
	out, err := engine.Render("admins.html", page)
	require.NoError(t, err)
	assert.Contains(t, out, `data-id="id-1"`)
	assert.Contains(t, out, "ada &lt;ada@example.com&gt;")
	assert.Contains(t, out, "Admin ada created.")
	assert.Contains(t, out, "1 administrator")
}

func TestEngineBaseDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.html"), []byte("custom {{ title }}"), 0o644))

	engine, err := New(WithBaseDir(dir))
	require.NoError(t, err)

	out, err := engine.Render("login", Page{Title: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "custom Hi", out)
}

func TestEngineBaseDirOverrideExtendsEmbeddedBase(t *testing.T) {
	original, err := embedded.ReadFile("templates/login.html")
	require.NoError(t, err)
	override := strings.Replace(string(original), "{% block content %}", "{% block content %}<p class=\"brand\">Acme</p>", 1)
	require.NotEqual(t, string(original), override)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.html"), []byte(override), 0o644))

	engine, err := New(WithBaseDir(dir))
	require.NoError(t, err)

	form := NewForm(loginSchema(), formstate.DefaultState(), nil)
	form.Action = "/login"
	out, err := engine.Render("login", Page{Lang: "en", Title: "Admin login", Form: form})
	require.NoError(t, err)
	assert.Contains(t, out, `<p class="brand">Acme</p>`)
	assert.Contains(t, out, "<title>Admin login</title>")
	assert.Contains(t, out, `action="/login"`)

	// Pages not present in the directory still come from the embedded set.
	out, err = engine.Render("admins", Page{Title: "Administrators", Form: form})
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Administrators</title>")
	assert.NotContains(t, out, "Acme")
}

func TestEngineBaseDirMustExist(t *testing.T) {
	_, err := New(WithBaseDir(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)
}

func TestEngineUnknownTemplate(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	_, err = engine.Render("missing", nil)
	require.Error(t, err)
}
