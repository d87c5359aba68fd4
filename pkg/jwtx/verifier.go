package jwtx

import (
	"errors"
	"fmt"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// ErrInvalid is the umbrella for every verification failure. Callers that
// only care about "trust it or not" can match on it alone.
var ErrInvalid = errors.New("jwtx: invalid token")

var (
	ErrMalformed    = fmt.Errorf("%w: malformed", ErrInvalid)
	ErrInvalidSig   = fmt.Errorf("%w: bad signature", ErrInvalid)
	ErrIssuer       = fmt.Errorf("%w: issuer mismatch", ErrInvalid)
	ErrExpired      = fmt.Errorf("%w: expired", ErrInvalid)
	ErrNotYetValid  = fmt.Errorf("%w: not yet valid", ErrInvalid)
	ErrInvalidClaim = fmt.Errorf("%w: invalid claims", ErrInvalid)
)
