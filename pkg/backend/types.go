package backend

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// User mirrors a row of the hosted `usuarios` table. Field names follow the
// upstream schema, which is Spanish-first.
type User struct {
	ID             string `json:"id"`
	IDUsuario      int    `json:"id_usuario,omitempty"`
	Email          string `json:"email"`
	Nombre         string `json:"nombre"`
	Role           string `json:"role"`
	Departamento   string `json:"departamento,omitempty"`
	NumeroControl  string `json:"numero_control,omitempty"`
	NumeroEmpleado string `json:"numero_empleado,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
}

// Session is the token bundle returned by the auth endpoints.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	Nombre         string `json:"nombre" validate:"required"`
	Departamento   string `json:"departamento,omitempty"`
	NumeroEmpleado string `json:"numero_empleado,omitempty"`
}

var (
	// ErrSessionMissing reports that no session exists for the caller.
	ErrSessionMissing = errors.New("backend: session missing")
	// ErrInvalidCredentials reports a rejected email/password pair.
	ErrInvalidCredentials = errors.New("backend: invalid credentials")
	// ErrUserNotFound reports an empty directory lookup.
	ErrUserNotFound = errors.New("backend: user not found")
)

// APIError is a non-2xx response from the hosted backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("backend: remote error %d: %s", e.Status, e.Message)
}

var tokenErrorMarkers = []string{
	"refresh_token_not_found",
	"invalid refresh token",
	"auth session missing",
	"not logged in",
	"jwt expired",
}

// IsTokenError reports whether err signals an expired or missing token.
// These are terminal for the client session and must never be retried.
func IsTokenError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSessionMissing) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range tokenErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

var credentialErrorMarkers = []string{
	"invalid login credentials",
	"invalid credentials",
	"invalid_grant",
}

// IsCredentialError reports whether err is a rejected email/password pair.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range credentialErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
