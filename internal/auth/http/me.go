package http

import (
	"net/http"

	"github.com/aussiebroadwan/credauth/pkg/authsdk"
	"github.com/aussiebroadwan/credauth/pkg/httpx"
)

// SessionHandler godoc
//
//	@Summary		Current Session
//	@Description	Describes the principal a bearer token was issued to. The token is verified
//	@Description	statelessly, so a principal removed after login is still reported.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.SessionResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Router			/api/auth/me [get].
func SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFromContext(r.Context())
		if !ok {
			authsdk.ErrServerError.WriteError(w)
			return
		}

		resp := authsdk.SessionResponse{
			Subject:  claims.Subject,
			Username: claims.Username,
			Issuer:   claims.Issuer,
		}
		if claims.IssuedAt != nil {
			resp.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			resp.ExpiresAt = claims.ExpiresAt.Time
		}

		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
