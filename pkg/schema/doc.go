// Package schema describes the fields a form action expects: their primitive
// type, value transforms (trim, markup sanitisation) and ordered rules, each
// with the message shown when it fails. Schemas are declared in Go, loaded
// from JSON/YAML files, or derived from the request body of an OpenAPI 3
// operation via kin-openapi. A Schema is read-only once built and safe to share
// between concurrent submissions.
package schema
