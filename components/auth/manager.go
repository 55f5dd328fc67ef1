package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-training/pkg/backend"
	"github.com/goliatone/go-training/pkg/kvstore"
)

// DefaultBootstrapTimeout bounds the session restore against a slow or
// unreachable backend.
const DefaultBootstrapTimeout = 8 * time.Second

// legacyTokenKeys lists every key a cached credential may live under,
// including keys written by earlier releases. Purges remove all of them so a
// stale token can never resurrect a dead session.
var legacyTokenKeys = []string{
	backend.SessionKey,
	"auth:token",
	"auth:access_token",
	"auth:refresh_token",
	"auth:user",
}

// State is the client-visible auth snapshot.
type State struct {
	Authenticated   bool
	User            *backend.User
	Loading         bool
	Err             string
	RecoverySession bool
}

// IsAdmin reports an administrator role by case-insensitive substring match.
func (s State) IsAdmin() bool {
	return s.User != nil && strings.Contains(strings.ToLower(s.User.Role), "admin")
}

// IsInstructor reports an instructor role by case-insensitive substring match.
func (s State) IsInstructor() bool {
	return s.User != nil && strings.Contains(strings.ToLower(s.User.Role), "instructor")
}

// Options configures the session Manager.
type Options struct {
	Client           backend.Client
	Store            kvstore.Store
	Notifier         backend.Notifier
	Telemetry        Telemetry
	Validator        *validator.Validate
	MockMode         bool
	BootstrapTimeout time.Duration
}

// Manager owns the authentication state machine: bootstrap, login, logout,
// registration, and token refresh. It is safe for concurrent use.
type Manager struct {
	client    backend.Client
	store     kvstore.Store
	notifier  *BestEffortNotifier
	telemetry Telemetry
	validate  *validator.Validate
	mockMode  bool
	timeout   time.Duration

	mu    sync.RWMutex
	state State
}

// NewManager builds a Manager with safe defaults.
func NewManager(opts Options) *Manager {
	if opts.BootstrapTimeout <= 0 {
		opts.BootstrapTimeout = DefaultBootstrapTimeout
	}
	if opts.Validator == nil {
		opts.Validator = validator.New()
	}
	telemetry := normalizeTelemetry(opts.Telemetry)
	return &Manager{
		client:    opts.Client,
		store:     opts.Store,
		notifier:  NewBestEffortNotifier(opts.Notifier, telemetry),
		telemetry: telemetry,
		validate:  opts.Validator,
		mockMode:  opts.MockMode,
		timeout:   opts.BootstrapTimeout,
	}
}

// State returns a snapshot of the current auth state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Bootstrap restores a session at startup. Timeouts and token-shaped errors
// purge cached credentials and settle into a logged-out state; the restore
// is never retried.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.setLoading(true)
	defer m.setLoading(false)

	if m.mockMode {
		session, err := m.client.Session(ctx)
		if err != nil {
			m.settleLoggedOut("")
			return
		}
		m.installSession(session, false)
		m.telemetry.Record(ctx, "auth.bootstrap.restored", map[string]any{"mock": true})
		return
	}

	restoreCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	session, err := m.client.Session(restoreCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || backend.IsTokenError(err) {
			m.purgeTokens(ctx)
			m.settleLoggedOut("")
			m.telemetry.Record(ctx, "auth.bootstrap.expired", map[string]any{"error": err.Error()})
			return
		}
		m.settleLoggedOut(err.Error())
		m.telemetry.Record(ctx, "auth.bootstrap.error", map[string]any{"error": err.Error()})
		return
	}
	m.installSession(session, false)
	m.telemetry.Record(ctx, "auth.bootstrap.restored", map[string]any{"user_id": session.User.ID})
}

// Login authenticates with an email or an alternate identifier
// (control/employee number), resolving the latter through the directory
// first. Credential rejections normalize to MsgInvalidCredentials.
func (m *Manager) Login(ctx context.Context, identifier, password string) error {
	email, err := ResolveIdentifierEmail(ctx, m.client, identifier)
	if err != nil {
		if errors.Is(err, ErrEmployeeNumberNotFound) || errors.Is(err, ErrEmployeeNumberNoEmail) {
			// Never reveal whether the identifier exists or is usable.
			return ErrInvalidCredentials
		}
		return err
	}
	session, err := m.client.SignIn(ctx, email, password)
	if err != nil {
		m.telemetry.Record(ctx, "auth.login.rejected", map[string]any{"error": err.Error()})
		if backend.IsCredentialError(err) {
			return ErrInvalidCredentials
		}
		return err
	}
	m.installSession(session, false)
	m.telemetry.Record(ctx, "auth.login.success", map[string]any{"user_id": session.User.ID})
	return nil
}

// LoginWithEmployeeNumber resolves an employee/control number to an email
// across normalized variants, then authenticates with it.
func (m *Manager) LoginWithEmployeeNumber(ctx context.Context, number, password string) error {
	email, err := ResolveEmployeeEmail(ctx, m.client, number)
	if err != nil {
		return err
	}
	return m.Login(ctx, email, password)
}

// Register validates the payload, creates the account, and fires a
// best-effort welcome notification that never fails the registration.
func (m *Manager) Register(ctx context.Context, input backend.RegisterInput) (backend.User, error) {
	if err := m.validate.Struct(input); err != nil {
		return backend.User{}, err
	}
	user, err := m.client.Register(ctx, input)
	if err != nil {
		return backend.User{}, err
	}
	m.notifier.Notify(ctx, "user.registered", map[string]any{
		"email":  user.Email,
		"nombre": user.Nombre,
	})
	m.telemetry.Record(ctx, "auth.register.success", map[string]any{"user_id": user.ID})
	return user, nil
}

// Logout signs out and converges to a logged-out state regardless of what
// the backend says. A missing remote session counts as success; any other
// error is recorded but never blocks the local teardown.
func (m *Manager) Logout(ctx context.Context) {
	if m.mockMode {
		if err := m.client.SignOut(ctx); err != nil {
			m.telemetry.Record(ctx, "auth.logout.error", map[string]any{"error": err.Error()})
		}
		m.settleLoggedOut("")
		return
	}
	if err := m.client.SignOut(ctx); err != nil && !backend.IsTokenError(err) {
		m.telemetry.Record(ctx, "auth.logout.error", map[string]any{"error": err.Error()})
	}
	m.purgeTokens(ctx)
	m.settleLoggedOut("")
}

// RefreshSession exchanges the cached refresh token for fresh credentials.
// Token-shaped failures route through Logout instead of surfacing.
func (m *Manager) RefreshSession(ctx context.Context) error {
	session, err := m.client.Session(ctx)
	if err != nil {
		if backend.IsTokenError(err) {
			m.Logout(ctx)
			return nil
		}
		return err
	}
	refreshed, err := m.client.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if backend.IsTokenError(err) {
			m.Logout(ctx)
			return nil
		}
		return err
	}
	m.installSession(refreshed, m.State().RecoverySession)
	m.telemetry.Record(ctx, "auth.refresh.success", map[string]any{"user_id": refreshed.User.ID})
	return nil
}

// CompleteRecovery installs a session established through a password-reset
// link. The state keeps the recovery flag until the next normal login.
func (m *Manager) CompleteRecovery(ctx context.Context, session backend.Session) {
	m.installSession(session, true)
	m.telemetry.Record(ctx, "auth.recovery.session", map[string]any{"user_id": session.User.ID})
}

func (m *Manager) installSession(session backend.Session, recovery bool) {
	user := session.User
	m.mu.Lock()
	m.state = State{
		Authenticated:   true,
		User:            &user,
		RecoverySession: recovery,
	}
	m.mu.Unlock()
}

func (m *Manager) settleLoggedOut(errMsg string) {
	m.mu.Lock()
	m.state = State{Err: errMsg}
	m.mu.Unlock()
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.state.Loading = loading
	m.mu.Unlock()
}

func (m *Manager) purgeTokens(ctx context.Context) {
	if m.store == nil {
		return
	}
	if err := m.store.MultiRemove(ctx, legacyTokenKeys); err != nil {
		m.telemetry.Record(ctx, "auth.purge_error", map[string]any{"error": err.Error()})
	}
}
