package http

import (
	"net/http"

	"github.com/aussiebroadwan/credauth/pkg/authsdk"
	"github.com/aussiebroadwan/credauth/pkg/httpx"
)

// IndexHandler godoc
//
//	@Summary		Service Descriptor
//	@Description	Names the service and lists the authentication endpoints
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	authsdk.ServiceInfo
//	@Router			/ [get].
func IndexHandler(version string) http.HandlerFunc {
	info := authsdk.ServiceInfo{
		Service: "credauth",
		Version: version,
		Endpoints: map[string]string{
			"register": "POST /api/auth/register",
			"login":    "POST /api/auth/login",
			"session":  "GET /api/auth/me",
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, info)
	}
}

// NotFoundHandler answers every unmatched route with a JSON 404.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authsdk.ErrNotFound.WriteError(w)
	}
}
