package domain

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// DefaultMinSecretLength is the shortest secret Register accepts unless
// configured otherwise.
const DefaultMinSecretLength = 6

// Principal is a registered identity. Username is unique and compared case
// sensitively. SecretHash is a self-describing digest, never the plaintext.
type Principal struct {
	ID         string
	Username   string
	SecretHash string
	CreatedAt  time.Time
}

// Credentials is what a caller presents to register or log in.
type Credentials struct {
	Username string `json:"username"`
	Secret   string `json:"password"`
}

// Validate checks both fields are present and, when minSecret > 0, that the
// secret is at least that many characters long.
func (c Credentials) Validate(minSecret int) error {
	secretRules := []validation.Rule{validation.Required}
	if minSecret > 0 {
		secretRules = append(secretRules, validation.RuneLength(minSecret, 0))
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Secret, secretRules...),
	)
}

// MatchesConfirmation is a validation rule requiring the value to equal s.
func MatchesConfirmation(s string) validation.RuleFunc {
	return func(value interface{}) error {
		v, _ := value.(string)
		if v != s {
			return errors.New("passwords do not match")
		}
		return nil
	}
}
