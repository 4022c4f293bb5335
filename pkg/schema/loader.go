package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse reads a single schema document in JSON or YAML. When the document
// omits a name, the base name of source (without extension) is used.
func Parse(data []byte, source string) (*Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}

	name := strings.TrimSpace(doc.Name)
	if name == "" {
		base := path.Base(source)
		name = strings.TrimSuffix(base, path.Ext(base))
	}

	s, err := New(name, doc.Fields...)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", source, err)
	}
	return s, nil
}

type documentFile struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Store indexes schemas by name.
type Store struct {
	schemas map[string]*Schema
	sources map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		schemas: make(map[string]*Schema),
		sources: make(map[string]string),
	}
}

// LoadFS walks fsys and parses every JSON/YAML file as a schema. Duplicate
// names across files are rejected. A nil fsys yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", p, err)
		}
		s, err := Parse(data, p)
		if err != nil {
			return err
		}
		return store.addFrom(s, p)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Add registers s under its name.
func (st *Store) Add(s *Schema) error {
	return st.addFrom(s, "")
}

// Merge copies every schema of other into st, replacing entries with the same
// name. It is used to layer an override directory over embedded defaults.
func (st *Store) Merge(other *Store) {
	if other == nil {
		return
	}
	for name, s := range other.schemas {
		st.schemas[name] = s
		st.sources[name] = other.sources[name]
	}
}

func (st *Store) addFrom(s *Schema, source string) error {
	if s == nil {
		return fmt.Errorf("schema: cannot register nil schema")
	}
	if prev, exists := st.sources[s.Name]; exists {
		return fmt.Errorf("schema: duplicate schema %q (files %s and %s)", s.Name, prev, source)
	}
	st.schemas[s.Name] = s
	st.sources[s.Name] = source
	return nil
}

// Get returns the schema registered under name.
func (st *Store) Get(name string) (*Schema, bool) {
	if st == nil {
		return nil, false
	}
	s, ok := st.schemas[name]
	return s, ok
}

// Names lists registered schema names in sorted order.
func (st *Store) Names() []string {
	if st == nil {
		return nil
	}
	names := make([]string, 0, len(st.schemas))
	for name := range st.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isSchemaFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
