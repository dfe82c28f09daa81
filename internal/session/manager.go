// Package session tracks the single signed-in user of a device.
//
// The manager starts anonymous. Restore must be called once at start-up to
// pick up a persisted session; a restored session never expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/store"
)

// State is the manager's authentication state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Manager owns the persisted current-user record.
type Manager struct {
	mu      sync.RWMutex
	store   store.Store
	auth    *auth.Service
	current *models.User
}

// NewManager creates an anonymous Manager. s holds the current-user record.
func NewManager(s store.Store, a *auth.Service) *Manager {
	return &Manager{store: s, auth: a}
}

// Restore loads the persisted session. A corrupt record is deleted, the
// manager stays anonymous and the returned error wraps models.ErrStorageCorruption.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	user, err := store.LoadRecord[models.User](ctx, m.store, store.KeyCurrentUser)
	if errors.Is(err, models.ErrStorageCorruption) {
		observability.Logger.WarnContext(ctx, "discarding corrupted session record", slog.String("error", err.Error()))
		if delErr := m.store.Delete(ctx, store.KeyCurrentUser); delErr != nil {
			return fmt.Errorf("clear corrupted session: %w", delErr)
		}
		return err
	}
	if err != nil {
		return err
	}
	if user != nil {
		redacted := user.Redacted()
		m.current = &redacted
	}
	return nil
}

// Login checks the credentials and, on success, persists the session.
// On failure the state is unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.signIn(ctx, user)
}

// Register creates the account and signs it in.
func (m *Manager) Register(ctx context.Context, in auth.RegisterInput) (*models.User, error) {
	user, err := m.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return m.signIn(ctx, user)
}

func (m *Manager) signIn(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	redacted := user.Redacted()
	if err := store.SaveRecord(ctx, m.store, store.KeyCurrentUser, redacted); err != nil {
		return nil, models.NewInternalError(err)
	}
	m.current = &redacted
	out := redacted
	return &out, nil
}

// Logout clears the persisted session.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, store.KeyCurrentUser); err != nil {
		return models.NewInternalError(err)
	}
	m.current = nil
	return nil
}

// Current returns a copy of the signed-in user.
func (m *Manager) Current() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return models.User{}, false
	}
	return *m.current, true
}

// Identity returns the explicit identity handle of the signed-in user.
func (m *Manager) Identity() (auth.Identity, bool) {
	u, ok := m.Current()
	if !ok {
		return auth.Identity{}, false
	}
	return auth.Identity{UserID: u.ID, Name: u.Name}, true
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return Anonymous
	}
	return Authenticated
}
