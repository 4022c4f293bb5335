package admin

import (
	"errors"
	"time"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown username
// or a wrong password. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("admin: invalid credentials")

// Credentials is the decoded login form.
type Credentials struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// NewAdmin is the decoded create admin form.
type NewAdmin struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Email    string `form:"email"`
}

// Admin is a stored administrator. The password hash never leaves the store.
type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
