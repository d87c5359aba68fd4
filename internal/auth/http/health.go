package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/credauth/internal/auth/store"
	"github.com/aussiebroadwan/credauth/pkg/authsdk"
	"github.com/aussiebroadwan/credauth/pkg/httpx"
	"github.com/aussiebroadwan/credauth/pkg/jwtx"
	"github.com/aussiebroadwan/credauth/pkg/slogx"
)

const (
	checkOK    = "ok"
	checkError = "error"
)

// uptime rounds to the second so probes don't print nanoseconds.
func uptime(since time.Time) string {
	return time.Since(since).Round(time.Second).String()
}

// LivezHandler godoc
//
//	@Summary		Liveness
//	@Description	Answers 200 whenever the process can serve HTTP. Dependencies are not checked.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  checkOK,
			Uptime:  uptime(startTime),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness
//	@Description	Pings the principal store and round trips a token through the signer.
//	@Description	Any failing check turns the response into a 503 with status "degraded".
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	issuer jwtx.TokenIssuer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := slogx.FromContext(r.Context())

		checks := &authsdk.HealthChecks{
			Database: runCheck(l, "database", func() error { return pingStore(r.Context(), st) }),
			Signer:   runCheck(l, "signer", func() error { return probeSigner(issuer) }),
		}

		status, code := checkOK, http.StatusOK
		if checks.Database != checkOK || checks.Signer != checkOK {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		// Failure detail goes to the log only.
		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  uptime(startTime),
			Version: version,
			Checks:  checks,
		})
	}
}

func runCheck(l *slog.Logger, name string, check func() error) string {
	if err := check(); err != nil {
		l.Warn("readiness check failed", slog.String("check", name), slog.Any("err", err))
		return checkError
	}
	return checkOK
}

func pingStore(ctx context.Context, st store.Store) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return st.Ping(ctx)
}

func probeSigner(issuer jwtx.TokenIssuer) error {
	if issuer == nil {
		return jwtx.ErrInvalid
	}
	token, _, err := issuer.Issue("readyz", "readyz")
	if err != nil {
		return err
	}
	_, err = issuer.Verify(token)
	return err
}
