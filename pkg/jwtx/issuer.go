package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest HMAC key NewHS256Issuer accepts.
const MinKeyLength = 16

// InsecureDefaultKey is a publicly known signing key. It only exists so a
// throwaway dev instance can boot without configuration, and it is only
// reachable through NewInsecureDefaultIssuer. Anyone who reads this file can
// forge tokens for a service running with it.
const InsecureDefaultKey = "credauth-insecure-default-signing-key"

var ErrWeakKey = fmt.Errorf("jwtx: signing key shorter than %d bytes", MinKeyLength)

// TokenIssuer signs login tokens and checks them again later.
type TokenIssuer interface {
	Verifier
	Issue(subject, username string) (token string, expiresAt time.Time, err error)
}

// HS256Issuer signs and verifies tokens with a single shared HMAC key.
// Verification is stateless, it never looks the principal up again.
type HS256Issuer struct {
	key    []byte
	issuer string
	now    func() time.Time
}

type Option func(*HS256Issuer)

// WithIssuer sets the iss claim on issued tokens and requires it on verify.
func WithIssuer(iss string) Option { return func(i *HS256Issuer) { i.issuer = iss } }

// WithClock swaps the time source, mostly for tests.
func WithClock(now func() time.Time) Option { return func(i *HS256Issuer) { i.now = now } }

func NewHS256Issuer(key []byte, opts ...Option) (*HS256Issuer, error) {
	if len(key) < MinKeyLength {
		return nil, ErrWeakKey
	}
	return newHS256Issuer(key, opts...), nil
}

// NewInsecureDefaultIssuer signs with InsecureDefaultKey. Callers must log
// loudly when they use it.
func NewInsecureDefaultIssuer(opts ...Option) *HS256Issuer {
	return newHS256Issuer([]byte(InsecureDefaultKey), opts...)
}

func newHS256Issuer(key []byte, opts ...Option) *HS256Issuer {
	i := &HS256Issuer{
		key: append([]byte(nil), key...),
		now: time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// TTL is always DefaultTTL. Tokens have no other lifetime.
func (i *HS256Issuer) TTL() time.Duration { return DefaultTTL }

// Issue signs a token for subject/username expiring TTL from now.
func (i *HS256Issuer) Issue(subject, username string) (string, time.Time, error) {
	claims := NewClaims(subject, username, i.issuer, DefaultTTL, i.now())

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature, algorithm, issuer and the exp/nbf window.
func (i *HS256Issuer) Verify(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var claims Claims
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidClaim
	}

	return claims, nil
}

func mapParseError(err error) error {
	var sentinel error
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		sentinel = ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		sentinel = ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenMalformed):
		sentinel = ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		sentinel = ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		sentinel = ErrIssuer
	default:
		sentinel = ErrInvalidClaim
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
