package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errNoExpiry = errors.New("auth: token carries no expiry claim")

// TokenExpiry extracts the expiry claim from an access token without
// verifying the signature. The hosted backend signs its own tokens; the
// client only needs the timestamp to decide when to refresh.
func TokenExpiry(accessToken string) (time.Time, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}, errNoExpiry
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errNoExpiry
	}
	return exp.Time, nil
}

// TokenExpiresWithin reports whether the access token expires inside the
// given window. Tokens that cannot be parsed count as expiring so callers
// refresh proactively.
func TokenExpiresWithin(accessToken string, window time.Duration) bool {
	expiry, err := TokenExpiry(accessToken)
	if err != nil {
		return true
	}
	return time.Until(expiry) <= window
}
