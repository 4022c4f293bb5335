// Package decode turns submitted form fields into a typed value or a
// validation failure.
//
// Submitted fields are ordered pairs whose names may repeat. Decoding first
// flattens them into a single value per name, the last occurrence winning,
// then evaluates every schema field in declaration order. Issues accumulate
// across the whole schema so the caller can display all of them at once.
// Only the fields a schema declares reach the decoded value.
package decode
