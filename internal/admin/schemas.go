package admin

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formaction/pkg/schema"
)

// Schema names.
const (
	LoginSchema       = "login"
	CreateAdminSchema = "create_admin"
)

//go:embed schemas/*.yaml
var embedded embed.FS

// Schemas loads the embedded admin schemas. When overrideDir is set, schemas
// found there replace the embedded ones with the same name.
func Schemas(overrideDir string) (*schema.Store, error) {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		return nil, fmt.Errorf("admin: embedded schemas: %w", err)
	}
	store, err := schema.LoadFS(sub)
	if err != nil {
		return nil, fmt.Errorf("admin: embedded schemas: %w", err)
	}

	if dir := strings.TrimSpace(overrideDir); dir != "" {
		overrides, err := schema.LoadFS(os.DirFS(dir))
		if err != nil {
			return nil, fmt.Errorf("admin: schema overrides in %s: %w", dir, err)
		}
		store.Merge(overrides)
	}

	for _, name := range []string{LoginSchema, CreateAdminSchema} {
		if _, ok := store.Get(name); !ok {
			return nil, fmt.Errorf("admin: schema %q is missing", name)
		}
	}
	return store, nil
}
