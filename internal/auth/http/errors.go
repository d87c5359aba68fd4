package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/credauth/internal/auth/service"
	"github.com/aussiebroadwan/credauth/pkg/authsdk"
	"github.com/aussiebroadwan/credauth/pkg/slogx"
)

// writeServiceError maps the service's error categories onto status codes.
// Internal failures are logged here and reach the caller as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrValidation):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrConflict):
		authsdk.ErrUserExists.WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		authsdk.ErrInvalidCredentials.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
		authsdk.ErrServerError.WriteError(w)
	}
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	e := *authsdk.ErrInvalidRequest
	e.Fields = fields
	e.WriteError(w)
}
