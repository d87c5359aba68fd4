package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Caller facing failure categories. The HTTP layer maps these to status
// codes; nothing below the service returns them.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("user already exists")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrInternal     = errors.New("internal error")
)

// ValidationError lists what was wrong with each input field. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError converts ozzo validation output into a *ValidationError.
// Errors that aren't per-field end up under "request".
func NewValidationError(err error) *ValidationError {
	fields := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for k, v := range verrs {
			if v != nil {
				fields[k] = v.Error()
			}
		}
	} else if err != nil {
		fields["request"] = err.Error()
	}
	return &ValidationError{Fields: fields}
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
