package backend

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-training/pkg/kvstore"
)

// MockUserKey stores the signed-in mock user id so demo sessions survive
// restarts without talking to any real backend.
const MockUserKey = "auth:mock_user"

// MockAccount pairs a directory row with its demo password.
type MockAccount struct {
	User     User
	Password string
}

// MockClient implements the full backend surface over an in-memory fixture
// dataset. It is selected via configuration for demos and offline work.
type MockClient struct {
	cache kvstore.Store

	mu       sync.RWMutex
	accounts []MockAccount
	session  *Session
}

// NewMockClient builds a mock backend from the provided accounts. When
// accounts is empty a small demo roster is seeded.
func NewMockClient(cache kvstore.Store, accounts ...MockAccount) *MockClient {
	if len(accounts) == 0 {
		accounts = DefaultMockAccounts()
	}
	return &MockClient{cache: cache, accounts: accounts}
}

// DefaultMockAccounts returns the demo roster used by examples and tests.
func DefaultMockAccounts() []MockAccount {
	return []MockAccount{
		{
			User: User{
				ID: "mock-auth-1", IDUsuario: 1,
				Email: "ana.garcia@example.com", Nombre: "Ana García",
				Role: "Administrador", Departamento: "Recursos Humanos",
				NumeroControl: "CTL-1001", NumeroEmpleado: "EMP001",
			},
			Password: "demo1234",
		},
		{
			User: User{
				ID: "mock-auth-2", IDUsuario: 2,
				Email: "luis.mtz@example.com", Nombre: "Luis Martínez",
				Role: "Instructor", Departamento: "Tecnología",
				NumeroControl: "CTL-1002", NumeroEmpleado: "EMP002",
			},
			Password: "demo1234",
		},
		{
			User: User{
				ID: "mock-auth-3", IDUsuario: 3,
				Email: "sofia.lopez@example.com", Nombre: "Sofía López",
				Role: "Empleado", Departamento: "Operaciones",
				NumeroControl: "CTL-1003", NumeroEmpleado: "EMP010",
			},
			Password: "demo1234",
		},
	}
}

// Session restores a session from the locally stored mock user id.
func (c *MockClient) Session(ctx context.Context) (Session, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session != nil {
		return *session, nil
	}
	if c.cache == nil {
		return Session{}, ErrSessionMissing
	}
	authID, ok, err := c.cache.Get(ctx, MockUserKey)
	if err != nil || !ok {
		return Session{}, ErrSessionMissing
	}
	user, err := c.UserByAuthID(ctx, strings.Trim(authID, `"`))
	if err != nil {
		return Session{}, ErrSessionMissing
	}
	return c.issueSession(ctx, user), nil
}

// SignIn validates demo credentials and issues a session.
func (c *MockClient) SignIn(ctx context.Context, email, password string) (Session, error) {
	c.mu.RLock()
	var match *MockAccount
	for i := range c.accounts {
		if strings.EqualFold(c.accounts[i].User.Email, email) {
			match = &c.accounts[i]
			break
		}
	}
	c.mu.RUnlock()
	if match == nil || match.Password != password {
		return Session{}, ErrInvalidCredentials
	}
	return c.issueSession(ctx, match.User), nil
}

// SignOut clears the mock session keys only.
func (c *MockClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if c.cache != nil {
		return c.cache.Remove(ctx, MockUserKey)
	}
	return nil
}

// Refresh reissues the current session; mock tokens never truly expire.
func (c *MockClient) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil || session.RefreshToken != refreshToken {
		return Session{}, ErrSessionMissing
	}
	return c.issueSession(ctx, session.User), nil
}

// Register adds the account to the roster with the next free id.
func (c *MockClient) Register(_ context.Context, input RegisterInput) (User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, account := range c.accounts {
		if strings.EqualFold(account.User.Email, input.Email) {
			return User{}, &APIError{Status: 422, Code: "user_already_exists", Message: "user already registered"}
		}
	}
	user := User{
		ID:             uuid.NewString(),
		IDUsuario:      len(c.accounts) + 1,
		Email:          input.Email,
		Nombre:         input.Nombre,
		Role:           "Empleado",
		Departamento:   input.Departamento,
		NumeroEmpleado: input.NumeroEmpleado,
	}
	c.accounts = append(c.accounts, MockAccount{User: user, Password: input.Password})
	return user, nil
}

// UserByID looks up a roster row by internal numeric id.
func (c *MockClient) UserByID(_ context.Context, id int) (User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, account := range c.accounts {
		if account.User.IDUsuario == id {
			return account.User, nil
		}
	}
	return User{}, ErrUserNotFound
}

// UserByAuthID looks up a roster row by auth-identity id.
func (c *MockClient) UserByAuthID(_ context.Context, authID string) (User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, account := range c.accounts {
		if account.User.ID == authID {
			return account.User, nil
		}
	}
	return User{}, ErrUserNotFound
}

// FindByIdentifier performs an exact-match lookup on an identifier column.
func (c *MockClient) FindByIdentifier(_ context.Context, field, value string) (User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, account := range c.accounts {
		if identifierValue(account.User, field) == value {
			return account.User, nil
		}
	}
	return User{}, ErrUserNotFound
}

// SearchByIdentifier performs a case-insensitive substring lookup.
func (c *MockClient) SearchByIdentifier(_ context.Context, field, fragment string) ([]User, error) {
	fragment = strings.ToLower(fragment)
	c.mu.RLock()
	defer c.mu.RUnlock()
	var rows []User
	for _, account := range c.accounts {
		if strings.Contains(strings.ToLower(identifierValue(account.User, field)), fragment) {
			rows = append(rows, account.User)
		}
	}
	return rows, nil
}

func identifierValue(user User, field string) string {
	switch field {
	case "numero_control":
		return user.NumeroControl
	case "numero_empleado":
		return user.NumeroEmpleado
	case "email":
		return user.Email
	default:
		return ""
	}
}

func (c *MockClient) issueSession(ctx context.Context, user User) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	session := Session{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         user,
	}
	c.session = &session
	if c.cache != nil {
		// best effort; demo sessions are disposable
		_ = c.cache.Set(ctx, MockUserKey, user.ID)
	}
	return session
}
