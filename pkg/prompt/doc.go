// Package prompt presents forms in a terminal. Collect turns a schema into a
// sequence of prompts, Print renders a submission state, and Session ties
// both to a handler with retries on failure.
package prompt
