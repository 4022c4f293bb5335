package command

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formaction/internal/admin"
	"github.com/goliatone/go-formaction/pkg/prompt"
)

// scriptedDriver answers prompts in order. Inputs and passwords are consumed
// from separate queues.
type scriptedDriver struct {
	inputs    []string
	passwords []string
	infos     []string
	helps     []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	d.helps = append(d.helps, cfg.Help)
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := d.inputs[0]
	d.inputs = d.inputs[1:]
	return val, nil
}

func (d *scriptedDriver) Password(_ context.Context, cfg prompt.InputConfig) (string, error) {
	d.helps = append(d.helps, cfg.Help)
	if len(d.passwords) == 0 {
		return "", errors.New("no password scripted")
	}
	val := d.passwords[0]
	d.passwords = d.passwords[1:]
	return val, nil
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	return false, errors.New("no confirm scripted")
}

func (d *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	return -1, errors.New("no select scripted")
}

func (d *scriptedDriver) TextArea(context.Context, prompt.TextAreaConfig) (string, error) {
	return "", errors.New("no textarea scripted")
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func newTestApp(driver prompt.PromptDriver) (*App, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &App{
		Out:          out,
		Err:          errOut,
		Driver:       driver,
		StoreOptions: []admin.StoreOption{admin.WithCost(bcrypt.MinCost)},
		Serve: func(context.Context, string, http.Handler) error {
			return errors.New("serve not expected")
		},
	}, out, errOut
}

func TestCreateAdminCommand(t *testing.T) {
	t.Run("creates the admin on the first attempt", func(t *testing.T) {
		// Arrange
		driver := &scriptedDriver{
			inputs:    []string{"ada", "ada@example.com"},
			passwords: []string{"long enough"},
		}
		app, out, _ := newTestApp(driver)

		// Act
		err := app.Command().Run(context.Background(), []string{"formaction", "create-admin"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"Administrators"}, driver.infos)
		assert.Contains(t, out.String(), "Admin ada created.")
	})

	t.Run("retries with the field errors as help", func(t *testing.T) {
		// Arrange
		driver := &scriptedDriver{
			inputs:    []string{"", "", "ada", ""},
			passwords: []string{"short", "long enough"},
		}
		app, out, _ := newTestApp(driver)

		// Act
		err := app.Command().Run(context.Background(), []string{"formaction", "create-admin", "--attempts", "2"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "username: Admin username is required.")
		assert.Contains(t, out.String(), "password: Password must be at least 8 characters.")
		assert.Contains(t, out.String(), "Admin ada created.")
		assert.Contains(t, driver.helps, "Admin username is required.")
	})

	t.Run("fails once attempts are exhausted", func(t *testing.T) {
		driver := &scriptedDriver{inputs: []string{"", ""}, passwords: []string{"long enough"}}
		app, _, _ := newTestApp(driver)

		err := app.Command().Run(context.Background(), []string{"formaction", "create-admin", "--attempts", "1"})

		assert.ErrorIs(t, err, ErrSubmissionFailed)
	})

	t.Run("duplicate seeded username", func(t *testing.T) {
		driver := &scriptedDriver{inputs: []string{"ada", ""}, passwords: []string{"long enough"}}
		app, out, _ := newTestApp(driver)

		err := app.Command().Run(context.Background(), []string{
			"formaction", "create-admin", "--attempts", "1", "--admin", "ada:existing1",
		})

		assert.ErrorIs(t, err, ErrSubmissionFailed)
		assert.Contains(t, out.String(), "username: Username already taken.")
	})
}

func TestLoginCommand(t *testing.T) {
	t.Run("wrong password then success", func(t *testing.T) {
		// Arrange
		driver := &scriptedDriver{
			inputs:    []string{"admin", "admin"},
			passwords: []string{"wrong", "supersecret"},
		}
		app, out, _ := newTestApp(driver)

		// Act
		err := app.Command().Run(context.Background(), []string{
			"formaction", "login", "--admin", "admin:supersecret", "--attempts", "2",
		})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Invalid username or password.")
		assert.Contains(t, out.String(), "Login: Success")
	})

	t.Run("spanish messages", func(t *testing.T) {
		driver := &scriptedDriver{inputs: []string{""}, passwords: []string{"x"}}
		app, out, _ := newTestApp(driver)

		err := app.Command().Run(context.Background(), []string{"formaction", "login", "--lang", "es", "--attempts", "1"})

		assert.ErrorIs(t, err, ErrSubmissionFailed)
		assert.NotContains(t, out.String(), "admin_username_required")
		assert.NotContains(t, out.String(), "Admin username is required.")
	})

	t.Run("rejects malformed seeds", func(t *testing.T) {
		app, _, _ := newTestApp(&scriptedDriver{})

		err := app.Command().Run(context.Background(), []string{"formaction", "login", "--admin", "nopassword"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "username:password")
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		app, _, _ := newTestApp(&scriptedDriver{})

		err := app.Command().Run(context.Background(), []string{"formaction", "login", "--log-level", "loud"})

		require.Error(t, err)
	})
}

func TestServeCommand(t *testing.T) {
	// Arrange
	app, _, errOut := newTestApp(nil)
	var (
		gotAddr    string
		gotHandler http.Handler
	)
	app.Serve = func(_ context.Context, addr string, h http.Handler) error {
		gotAddr, gotHandler = addr, h
		return nil
	}

	cfgPath := filepath.Join(t.TempDir(), "formaction.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("addr = \":9090\"\nrate_limit_rps = 0.0\n"), 0o644))

	// Act
	err := app.Command().Run(context.Background(), []string{"formaction", "serve", "--config", cfgPath})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ":9090", gotAddr)
	require.NotNil(t, gotHandler)
	assert.Contains(t, errOut.String(), "listening")

	rec := httptest.NewRecorder()
	gotHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeCommandAddrOverride(t *testing.T) {
	app, _, _ := newTestApp(nil)
	var gotAddr string
	app.Serve = func(_ context.Context, addr string, _ http.Handler) error {
		gotAddr = addr
		return nil
	}

	err := app.Command().Run(context.Background(), []string{"formaction", "serve", "--addr", "127.0.0.1:0"})

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", gotAddr)
}

func TestServeCommandRejectsBadConfig(t *testing.T) {
	app, _, _ := newTestApp(nil)
	cfgPath := filepath.Join(t.TempDir(), "formaction.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("unknown_key = 1\n"), 0o644))

	err := app.Command().Run(context.Background(), []string{"formaction", "serve", "--config", cfgPath})

	require.Error(t, err)
}

func TestSchemaCheckCommand(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "reset.yaml")
	invalid := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("fields:\n  - name: email\n    rules:\n      - kind: email\n"), 0o644))
	require.NoError(t, os.WriteFile(invalid, []byte("fields:\n  - name: age\n    rules:\n      - kind: min\n        value: \"1\"\n"), 0o644))

	t.Run("valid documents", func(t *testing.T) {
		app, out, _ := newTestApp(nil)

		err := app.Command().Run(context.Background(), []string{"formaction", "schema", "check", valid})

		require.NoError(t, err)
		assert.Contains(t, out.String(), "ok   "+valid+": reset (1 fields)")
	})

	t.Run("reports every invalid document", func(t *testing.T) {
		app, out, _ := newTestApp(nil)

		err := app.Command().Run(context.Background(), []string{
			"formaction", "schema", "check", valid, invalid, filepath.Join(dir, "missing.yaml"),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 of 3 documents invalid")
		assert.Contains(t, out.String(), "FAIL "+invalid)
		assert.Contains(t, out.String(), "min only applies to int or float fields")
	})

	t.Run("needs arguments", func(t *testing.T) {
		app, _, _ := newTestApp(nil)

		err := app.Command().Run(context.Background(), []string{"formaction", "schema", "check"})

		require.Error(t, err)
	})

	t.Run("openapi operation", func(t *testing.T) {
		doc := filepath.Join(dir, "openapi.yaml")
		require.NoError(t, os.WriteFile(doc, []byte(openAPIDoc), 0o644))
		app, out, _ := newTestApp(nil)

		err := app.Command().Run(context.Background(), []string{
			"formaction", "schema", "check", "--operation", "resetPassword", doc,
		})

		require.NoError(t, err)
		assert.Contains(t, out.String(), "(1 fields)")
	})
}

const openAPIDoc = `openapi: 3.0.3
info:
  title: reset
  version: 1.0.0
paths:
  /reset:
    post:
      operationId: resetPassword
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              required: [email]
              properties:
                email:
                  type: string
                  format: email
      responses:
        '204':
          description: sent
`
