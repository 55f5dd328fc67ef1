package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-training/pkg/backend"
	"github.com/goliatone/go-training/pkg/kvstore"
)

type stubClient struct {
	backend.Client

	sessionFn func(ctx context.Context) (backend.Session, error)
	refreshFn func(ctx context.Context, token string) (backend.Session, error)
	signOut   func(ctx context.Context) error
	findFn    func(ctx context.Context, field, value string) (backend.User, error)
}

func (s *stubClient) Session(ctx context.Context) (backend.Session, error) {
	return s.sessionFn(ctx)
}

func (s *stubClient) Refresh(ctx context.Context, token string) (backend.Session, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubClient) FindByIdentifier(ctx context.Context, field, value string) (backend.User, error) {
	if s.findFn != nil {
		return s.findFn(ctx, field, value)
	}
	return backend.User{}, backend.ErrUserNotFound
}

func (s *stubClient) SignOut(ctx context.Context) error {
	if s.signOut != nil {
		return s.signOut(ctx)
	}
	return nil
}

func newMockManager(t *testing.T, store kvstore.Store) (*Manager, *backend.MockClient) {
	t.Helper()
	client := backend.NewMockClient(store)
	manager := NewManager(Options{Client: client, Store: store, MockMode: true})
	return manager, client
}

func TestBootstrapTimeoutSettlesLoggedOut(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, "auth:refresh_token", "stale"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	client := &stubClient{
		sessionFn: func(ctx context.Context) (backend.Session, error) {
			<-ctx.Done()
			return backend.Session{}, ctx.Err()
		},
	}
	manager := NewManager(Options{Client: client, Store: store, BootstrapTimeout: 20 * time.Millisecond})
	manager.Bootstrap(ctx)

	state := manager.State()
	if state.Authenticated || state.User != nil {
		t.Fatalf("expected logged-out state, got %+v", state)
	}
	if state.Err != "" {
		t.Fatalf("timeout must settle silently, got error %q", state.Err)
	}
	if _, ok, _ := store.Get(ctx, "auth:refresh_token"); ok {
		t.Fatal("cached tokens must be purged on bootstrap timeout")
	}
}

func TestBootstrapTokenErrorPurgesLegacyKeys(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	for _, key := range legacyTokenKeys {
		if err := store.Set(ctx, key, "stale"); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	client := &stubClient{
		sessionFn: func(context.Context) (backend.Session, error) {
			return backend.Session{}, errors.New("refresh_token_not_found")
		},
	}
	manager := NewManager(Options{Client: client, Store: store})
	manager.Bootstrap(ctx)

	for _, key := range legacyTokenKeys {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Fatalf("key %q survived the purge", key)
		}
	}
	if manager.State().Authenticated {
		t.Fatal("expected logged-out state after token error")
	}
}

func TestBootstrapRestoresMockSession(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, backend.MockUserKey, "mock-auth-1"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	manager, _ := newMockManager(t, store)
	manager.Bootstrap(ctx)

	state := manager.State()
	if !state.Authenticated || state.User == nil {
		t.Fatalf("expected restored session, got %+v", state)
	}
	if state.User.Nombre != "Ana García" {
		t.Fatalf("restored wrong user: %q", state.User.Nombre)
	}
	if !state.IsAdmin() {
		t.Fatal("Administrador role must derive IsAdmin")
	}
}

func TestLoginResolvesEmployeeNumber(t *testing.T) {
	manager, _ := newMockManager(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	if err := manager.Login(ctx, "EMP001", "demo1234"); err != nil {
		t.Fatalf("login with employee number: %v", err)
	}
	state := manager.State()
	if !state.Authenticated || state.User.Email != "ana.garcia@example.com" {
		t.Fatalf("unexpected state after login: %+v", state)
	}
}

func TestLoginWrongPasswordNormalizesMessage(t *testing.T) {
	manager, _ := newMockManager(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	err := manager.Login(ctx, "EMP001", "nope")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if err.Error() != MsgInvalidCredentials {
		t.Fatalf("expected %q, got %q", MsgInvalidCredentials, err.Error())
	}
}

func TestLoginUnknownIdentifierNormalizesMessage(t *testing.T) {
	manager, _ := newMockManager(t, kvstore.NewMemoryStore())

	err := manager.Login(context.Background(), "EMP999", "demo1234")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown identifiers must not be distinguishable, got %v", err)
	}
}

func TestLoginIdentifierWithoutEmailNormalizesMessage(t *testing.T) {
	store := kvstore.NewMemoryStore()
	client := &stubClient{
		findFn: func(_ context.Context, _, value string) (backend.User, error) {
			if value == "CTL-9" {
				return backend.User{ID: "u-9", Nombre: "Sin Correo"}, nil
			}
			return backend.User{}, backend.ErrUserNotFound
		},
	}
	manager := NewManager(Options{Client: client, Store: store})
	ctx := context.Background()

	withRow := manager.Login(ctx, "CTL-9", "demo1234")
	withoutRow := manager.Login(ctx, "CTL-404", "demo1234")
	if !errors.Is(withRow, ErrInvalidCredentials) {
		t.Fatalf("identifier matching a row without email must look like a bad credential, got %v", withRow)
	}
	if withRow.Error() != withoutRow.Error() {
		t.Fatalf("responses must not distinguish identifiers: %q vs %q", withRow, withoutRow)
	}
}

func TestLoginWithEmployeeNumberDigitsOnlyVariant(t *testing.T) {
	manager, _ := newMockManager(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	// "EMP 001" normalizes to "EMP001" via whitespace stripping.
	if err := manager.LoginWithEmployeeNumber(ctx, "  EMP 001  ", "demo1234"); err != nil {
		t.Fatalf("login with messy employee number: %v", err)
	}
	if !manager.State().Authenticated {
		t.Fatal("expected authenticated state")
	}
}

func TestLogoutTerminalDespiteBackendError(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, backend.SessionKey, "{}"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	client := &stubClient{
		sessionFn: func(context.Context) (backend.Session, error) {
			return backend.Session{}, backend.ErrSessionMissing
		},
		signOut: func(context.Context) error {
			return errors.New("network down")
		},
	}
	manager := NewManager(Options{Client: client, Store: store})
	manager.installSession(backend.Session{User: backend.User{ID: "u1"}}, false)

	manager.Logout(ctx)

	state := manager.State()
	if state.Authenticated || state.User != nil {
		t.Fatalf("logout must converge to logged-out, got %+v", state)
	}
	if _, ok, _ := store.Get(ctx, backend.SessionKey); ok {
		t.Fatal("token keys must be purged even when sign-out fails")
	}
}

func TestRefreshSessionTokenErrorRoutesThroughLogout(t *testing.T) {
	store := kvstore.NewMemoryStore()
	client := &stubClient{
		sessionFn: func(context.Context) (backend.Session, error) {
			return backend.Session{RefreshToken: "rt"}, nil
		},
		refreshFn: func(context.Context, string) (backend.Session, error) {
			return backend.Session{}, errors.New("invalid refresh token")
		},
	}
	manager := NewManager(Options{Client: client, Store: store})
	manager.installSession(backend.Session{User: backend.User{ID: "u1"}}, false)

	if err := manager.RefreshSession(context.Background()); err != nil {
		t.Fatalf("token-shaped refresh failure must not surface, got %v", err)
	}
	if manager.State().Authenticated {
		t.Fatal("expected logged-out state after refresh token rejection")
	}
}

type recordingNotifier struct {
	events []string
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event string, _ map[string]any) error {
	n.events = append(n.events, event)
	return n.err
}

func TestRegisterFiresBestEffortNotification(t *testing.T) {
	store := kvstore.NewMemoryStore()
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	manager := NewManager(Options{
		Client:   backend.NewMockClient(store),
		Store:    store,
		Notifier: notifier,
		MockMode: true,
	})

	user, err := manager.Register(context.Background(), backend.RegisterInput{
		Email:    "nuevo@example.com",
		Password: "secreta123",
		Nombre:   "Nuevo Usuario",
	})
	if err != nil {
		t.Fatalf("notifier failure must not fail registration: %v", err)
	}
	if user.Email != "nuevo@example.com" {
		t.Fatalf("unexpected registered user: %+v", user)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "user.registered" {
		t.Fatalf("expected a single user.registered attempt, got %v", notifier.events)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	manager, _ := newMockManager(t, kvstore.NewMemoryStore())

	_, err := manager.Register(context.Background(), backend.RegisterInput{
		Email:    "not-an-email",
		Password: "short",
		Nombre:   "",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCompleteRecoveryFlagsSession(t *testing.T) {
	manager, _ := newMockManager(t, kvstore.NewMemoryStore())
	manager.CompleteRecovery(context.Background(), backend.Session{User: backend.User{ID: "u1", Role: "Empleado"}})

	state := manager.State()
	if !state.Authenticated || !state.RecoverySession {
		t.Fatalf("expected recovery session, got %+v", state)
	}
	if state.IsAdmin() || state.IsInstructor() {
		t.Fatal("Empleado role must not derive elevated flags")
	}

	if err := manager.Login(context.Background(), "ana.garcia@example.com", "demo1234"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if manager.State().RecoverySession {
		t.Fatal("normal login must clear the recovery flag")
	}
}
