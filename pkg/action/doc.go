// Package action implements the submission handler protocol.
//
// An Action decodes the submitted fields against its schema. A validation
// failure is projected into a Fail state. A decoded value is handed to the
// Persister; on success the configured cache tags are invalidated in order
// and a Success state is returned. A persister error is logged with its cause
// and reported to the user as a single form level message under the empty
// key, so internal details never reach the page.
//
//	login, err := action.New[admin.Credentials](loginSchema, store,
//		action.WithSuccessMessage("Login: Success"),
//	)
//	state, err := login.Submit(ctx, formstate.DefaultState(), fields)
package action
