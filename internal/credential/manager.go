package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"taglift/internal/logging"
)

// ErrNoCredential is returned when no valid credential exists and none could
// be obtained.
var ErrNoCredential = errors.New("no valid bank credential")

const bankOrigin = "https://interno.superprofessor.com.br"

// Manager owns the bank credential lifecycle: load on start, validity checks,
// and serialized refresh so concurrent workers never trigger duplicate logins.
type Manager struct {
	store  Store
	auth   Authenticator
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state State
}

// NewManager builds a Manager and loads any persisted credential.
func NewManager(store Store, auth Authenticator, logger *slog.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if auth == nil {
		return nil, errors.New("authenticator is nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	logger = logger.With(logging.String(logging.FieldComponent, "credential"))

	// Corrupt or unreadable state is not fatal: the manager starts without a
	// credential and the first EnsureValid triggers a fresh login.
	state, err := store.Load()
	if err != nil {
		logger.Warn("stored credential unusable, starting unauthenticated", logging.Error(err))
		state = State{}
	}
	return &Manager{
		store:  store,
		auth:   auth,
		logger: logger,
		now:    time.Now,
		state:  state,
	}, nil
}

// IsValid reports whether the current credential can be used right now.
func (m *Manager) IsValid() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Valid(m.now())
}

// Token returns the current token without refreshing. Empty when absent.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

// EnsureValid returns a usable token, refreshing through the authenticator
// when the stored one is missing or expired. Refreshes are serialized; a
// caller that blocked on the lock re-checks validity before authenticating
// so a burst of 401s causes one login, not several.
func (m *Manager) EnsureValid(ctx context.Context) (string, error) {
	m.mu.RLock()
	if m.state.Valid(m.now()) {
		token := m.state.Token
		m.mu.RUnlock()
		return token, nil
	}
	m.mu.RUnlock()

	return m.refresh(ctx, false)
}

// ForceRefresh discards the current credential and authenticates again. Used
// after the bank rejects a token that still looked valid locally.
func (m *Manager) ForceRefresh(ctx context.Context) (string, error) {
	return m.refresh(ctx, true)
}

func (m *Manager) refresh(ctx context.Context, force bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !force && m.state.Valid(m.now()) {
		return m.state.Token, nil
	}

	m.logger.Info("refreshing bank credential", logging.Bool("forced", force))
	state, err := m.auth.Authenticate(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCredential, err)
	}
	if !state.Valid(m.now()) {
		return "", fmt.Errorf("%w: authenticator returned an expired token", ErrNoCredential)
	}

	if err := m.store.Save(state); err != nil {
		return "", err
	}
	m.state = state
	m.logger.Info("bank credential refreshed",
		logging.String("expires_at", expiryLabel(state.ExpiresAt)))
	return state.Token, nil
}

// Snapshot returns a copy of the current credential state for inspection.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Headers returns the request headers the bank expects alongside the token.
func (m *Manager) Headers(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
		"Origin":        bankOrigin,
		"Referer":       bankOrigin + "/",
		"Accept":        "application/json",
		"Content-Type":  "application/json",
	}
}

func expiryLabel(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}
