// Package validation holds the structured failure produced by the form
// decoder and the projector that turns it into the one-message-per-field map
// carried by formstate.Fail.
package validation
