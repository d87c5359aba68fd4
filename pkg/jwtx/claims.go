package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long a login token stays valid. There is no refresh or
// revocation, so this is the whole lifetime.
const DefaultTTL = 24 * time.Hour

// Claims carried by a login token. Subject holds the principal id.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`
}

// NewClaims builds claims valid from now until now+ttl. Times are truncated
// to whole seconds since that's all the wire format keeps.
func NewClaims(subject, username, issuer string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
