package backend

import "context"

// AuthClient covers the session lifecycle against the hosted backend.
type AuthClient interface {
	Session(ctx context.Context) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	Register(ctx context.Context, input RegisterInput) (User, error)
}

// Directory exposes row queries against the `usuarios` table. Lookups by
// identifier are used to resolve control/employee numbers to emails before
// authenticating.
type Directory interface {
	UserByID(ctx context.Context, id int) (User, error)
	UserByAuthID(ctx context.Context, authID string) (User, error)
	FindByIdentifier(ctx context.Context, field, value string) (User, error)
	SearchByIdentifier(ctx context.Context, field, fragment string) ([]User, error)
}

// Client is a convenience union for services implementing the full backend surface.
type Client interface {
	AuthClient
	Directory
}

// Notifier dispatches secondary notifications (e.g. the welcome message sent
// after registration). Callers treat dispatch as best-effort.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]any) error
}
