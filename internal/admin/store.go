package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formaction/pkg/validation"
)

// MessageUsernameTaken is reported on the username field for duplicates.
const MessageUsernameTaken = "admin_username_taken"

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) StoreOption {
	return func(s *MemoryStore) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *MemoryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

type record struct {
	admin Admin
	hash  []byte
}

// MemoryStore keeps administrators in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	byUsername map[string]record
	cost       int
	now        func() time.Time
	newID      func() string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		byUsername: make(map[string]record),
		cost:       bcrypt.DefaultCost,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create stores a new administrator. A taken username is reported as a
// validation.Failure on the username field.
func (s *MemoryStore) Create(ctx context.Context, in NewAdmin) (Admin, error) {
	if err := ctx.Err(); err != nil {
		return Admin{}, err
	}
	username := normalize(in.Username)
	if username == "" {
		return Admin{}, errors.New("admin: username must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Admin{}, fmt.Errorf("admin: hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return Admin{}, validation.Failure{{Path: "username", Message: MessageUsernameTaken}}
	}
	a := Admin{
		ID:        s.newID(),
		Username:  username,
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: s.now().UTC(),
	}
	s.byUsername[username] = record{admin: a, hash: hash}
	return a, nil
}

// Authenticate checks credentials and returns the matching administrator.
func (s *MemoryStore) Authenticate(ctx context.Context, creds Credentials) (Admin, error) {
	if err := ctx.Err(); err != nil {
		return Admin{}, err
	}

	s.mu.RLock()
	rec, ok := s.byUsername[normalize(creds.Username)]
	s.mu.RUnlock()
	if !ok {
		return Admin{}, ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword(rec.hash, []byte(creds.Password))
	switch {
	case err == nil:
		return rec.admin, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return Admin{}, ErrInvalidCredentials
	default:
		return Admin{}, fmt.Errorf("admin: compare password: %w", err)
	}
}

// List returns every administrator, oldest first.
func (s *MemoryStore) List(ctx context.Context) ([]Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]Admin, 0, len(s.byUsername))
	for _, rec := range s.byUsername {
		out = append(out, rec.admin)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
