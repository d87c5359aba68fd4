package http

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/aussiebroadwan/credauth/internal/auth/domain"
	"github.com/aussiebroadwan/credauth/internal/auth/service"
	"github.com/aussiebroadwan/credauth/pkg/authsdk"
	"github.com/aussiebroadwan/credauth/pkg/httpx"
	"github.com/aussiebroadwan/credauth/pkg/slogx"
)

// RegisterHandler serves POST /api/auth/register.
type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Creates a principal. Accepts a JSON body or a urlencoded form.
//	@Description	When confirm_password is sent it must equal password.
//	@Tags			Auth
//	@Accept			json
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"credentials"
//	@Success		201		{object}	authsdk.RegisterResponse	"message, username"
//	@Failure		400		{object}	authsdk.ErrorResponse		"error, error_description, fields"
//	@Failure		409		{object}	authsdk.ErrorResponse		"user already exists"
//	@Failure		500		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/api/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vals, err := httpx.ReadValues(w, r, "username", "password", "confirm_password")
	if err != nil {
		slogx.FromContext(r.Context()).Debug("unreadable register body", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if confirm := vals["confirm_password"]; confirm != "" {
		if err := validation.Validate(confirm, validation.By(domain.MatchesConfirmation(vals["password"]))); err != nil {
			writeValidationError(w, map[string]string{"confirm_password": err.Error()})
			return
		}
	}

	res, err := h.AuthService.Register(r.Context(), vals["username"], vals["password"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Message:  "user registered",
		Username: res.Username,
	})
}

// LoginHandler serves POST /api/auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Checks a username and password and returns a bearer token valid for 24 hours.
//	@Description	An unknown username and a wrong password produce the same 401.
//	@Tags			Auth
//	@Accept			json
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"message, username, token, token_type, expires_at"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description, fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid credentials"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Header			200		{string}	Pragma					"no-cache"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vals, err := httpx.ReadValues(w, r, "username", "password")
	if err != nil {
		slogx.FromContext(r.Context()).Debug("unreadable login body", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.Login(r.Context(), vals["username"], vals["password"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Message:   "authenticated",
		Username:  res.Username,
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
	})
}
