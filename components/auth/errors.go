package auth

import "errors"

// MsgInvalidCredentials is the user-facing message for a rejected
// identifier/password pair. The same message is used whether the identifier
// or the password was wrong, so login never leaks which accounts exist.
const MsgInvalidCredentials = "Contraseña incorrecta"

var (
	// ErrInvalidCredentials normalizes every credential rejection to a
	// single user-facing message.
	ErrInvalidCredentials = errors.New(MsgInvalidCredentials)
	// ErrEmployeeNumberRequired reports an empty employee/control number.
	ErrEmployeeNumberRequired = errors.New("auth: employee number is required")
	// ErrEmployeeNumberNotFound reports that no directory row matched any
	// normalized variant of the number.
	ErrEmployeeNumberNotFound = errors.New("auth: employee number not found")
	// ErrEmployeeNumberNoEmail reports a matched row without an email to
	// authenticate with.
	ErrEmployeeNumberNoEmail = errors.New("auth: employee number has no associated email")
)
