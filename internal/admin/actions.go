package admin

import (
	"context"
	"errors"

	"github.com/inconshreveable/log15"

	"github.com/goliatone/go-formaction/internal/config"
	"github.com/goliatone/go-formaction/internal/i18n"
	"github.com/goliatone/go-formaction/pkg/action"
	"github.com/goliatone/go-formaction/pkg/formstate"
	"github.com/goliatone/go-formaction/pkg/schema"
	"github.com/goliatone/go-formaction/pkg/validation"
)

// Message IDs used by the admin actions.
const (
	MessageLoginSuccess       = "login_success"
	MessageAdminCreated       = "admin_created"
	MessageSubmissionFailed   = "submission_failed"
	MessageInvalidCredentials = "invalid_credentials"
)

// Deps collects what the admin actions need.
type Deps struct {
	Store        *MemoryStore
	Schemas      *schema.Store
	Invalidator  action.Invalidator
	Tags         config.Tags
	Translations *i18n.Translations
	Logger       log15.Logger
}

// Actions holds the admin submission handlers.
type Actions struct {
	Login  *action.Action[Credentials]
	Create *action.Action[NewAdmin]
}

// NewActions wires the login and create admin actions. Login invalidates
// nothing; creating an admin invalidates the admins tag.
func NewActions(deps Deps) (*Actions, error) {
	if deps.Store == nil {
		return nil, errors.New("admin: store is required")
	}
	if deps.Translations == nil {
		return nil, errors.New("admin: translations are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log15.New("module", "admin")
	}

	loginSchema, _ := deps.Schemas.Get(LoginSchema)
	createSchema, _ := deps.Schemas.Get(CreateAdminSchema)

	login, err := action.New[Credentials](loginSchema, LoginPersister(deps.Store),
		action.WithSuccessMessage(MessageLoginSuccess),
		action.WithFailureMessage(MessageSubmissionFailed),
		action.WithMessageResolver(deps.Translations),
		action.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	tr := deps.Translations
	create, err := action.New[NewAdmin](createSchema, CreatePersister(deps.Store),
		action.WithTags(deps.Tags.Admins),
		action.WithInvalidator(deps.Invalidator),
		action.WithSuccessMessageFunc(func(in NewAdmin) string {
			return tr.GetMessage(MessageAdminCreated, 0, map[string]interface{}{"Username": normalize(in.Username)})
		}),
		action.WithFailureMessage(MessageSubmissionFailed),
		action.WithMessageResolver(tr),
		action.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &Actions{Login: login, Create: create}, nil
}

// LoginPersister authenticates the credentials. Wrong credentials become a
// form level rejection instead of a persistence failure.
func LoginPersister(store *MemoryStore) action.PersisterFunc[Credentials] {
	return func(ctx context.Context, creds Credentials) error {
		_, err := store.Authenticate(ctx, creds)
		if errors.Is(err, ErrInvalidCredentials) {
			return validation.Failure{{Path: formstate.FormLevelKey, Message: MessageInvalidCredentials}}
		}
		return err
	}
}

// CreatePersister stores a new administrator.
func CreatePersister(store *MemoryStore) action.PersisterFunc[NewAdmin] {
	return func(ctx context.Context, in NewAdmin) error {
		_, err := store.Create(ctx, in)
		return err
	}
}
