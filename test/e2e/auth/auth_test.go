//go:build e2e

package auth_test

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credauth/pkg/authsdk"
	"github.com/aussiebroadwan/credauth/pkg/jwtx"
)

// TestHealthEndpoints verifies liveness and readiness once the container is up.
func TestHealthEndpoints(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t, nil))

	health, err := client.Liveness(t.Context())
	assertHealthy(t, health, err)

	health, err = client.Readiness(t.Context())
	assertHealthy(t, health, err)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Signer)

	info, err := client.Info(t.Context())
	require.NoError(t, err)
	require.Equal(t, "credauth", info.Service)
	require.Contains(t, info.Endpoints, "register")
}

// TestRegisterAndLogin walks the full flow and checks the token offline.
func TestRegisterAndLogin(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t, nil))

	registerUser(t, client, "alice")

	before := time.Now()
	login, err := client.Login(t.Context(), "alice", testPassword)
	require.NoError(t, err)
	require.Equal(t, "alice", login.Username)
	require.Equal(t, "Bearer", login.TokenType)
	require.WithinDuration(t, before.Add(24*time.Hour), login.ExpiresAt, time.Minute)

	issuer, err := jwtx.NewHS256Issuer([]byte(testSigningKey), jwtx.WithIssuer("credauth-e2e"))
	require.NoError(t, err)

	claims, err := issuer.Verify(login.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.NotEmpty(t, claims.Subject)

	session, err := client.Session(t.Context(), login.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", session.Username)
	require.Equal(t, claims.Subject, session.Subject)

	// a token signed under another key is not accepted
	other, err := jwtx.NewHS256Issuer([]byte("some-other-key-0123456789"), jwtx.WithIssuer("credauth-e2e"))
	require.NoError(t, err)
	_, err = other.Verify(login.Token)
	require.Error(t, err)

	forged, _, err := other.Issue(claims.Subject, "alice")
	require.NoError(t, err)
	_, err = client.Session(t.Context(), forged)
	assertCode(t, err, authsdk.ErrorCodeInvalidToken, "Forged token should be rejected")
}

// TestRegisterConflict verifies a taken username is rejected with 409.
func TestRegisterConflict(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t, nil))

	registerUser(t, client, "bob")

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{Username: "bob", Password: "different"})
	assertCode(t, err, authsdk.ErrorCodeUserExists, "Duplicate username should be rejected")
	require.Equal(t, http.StatusConflict, err.(*authsdk.APIError).StatusCode)

	// the original password still works
	_, err = client.Login(t.Context(), "bob", testPassword)
	require.NoError(t, err)
}

// TestConcurrentRegistration verifies exactly one of many racing
// registrations for the same username wins.
func TestConcurrentRegistration(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t, nil))

	const racers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Register(t.Context(), authsdk.RegisterRequest{Username: "carol", Password: testPassword})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case authsdk.IsCode(err, authsdk.ErrorCodeUserExists):
				conflicts++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, created)
	require.Equal(t, racers-1, conflicts)
}

// TestInvalidCredentials verifies unknown users and wrong passwords are
// indistinguishable.
func TestInvalidCredentials(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t, nil))

	registerUser(t, client, "dave")

	_, wrongPassword := client.Login(t.Context(), "dave", "wrong-password")
	assertCode(t, wrongPassword, authsdk.ErrorCodeInvalidCredentials, "Wrong password should be rejected")

	_, unknownUser := client.Login(t.Context(), "nobody", testPassword)
	assertCode(t, unknownUser, authsdk.ErrorCodeInvalidCredentials, "Unknown user should be rejected")

	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

// TestValidation verifies request validation reports per-field errors.
func TestValidation(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t, nil))

	tests := []struct {
		name  string
		req   authsdk.RegisterRequest
		field string
	}{
		{"missing username", authsdk.RegisterRequest{Password: testPassword}, "username"},
		{"short password", authsdk.RegisterRequest{Username: "erin", Password: "abc"}, "password"},
		{"confirmation mismatch", authsdk.RegisterRequest{Username: "erin", Password: testPassword, ConfirmPassword: "nope"}, "confirm_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Register(t.Context(), tt.req)
			assertCode(t, err, authsdk.ErrorCodeInvalidRequest, tt.name)
			require.Contains(t, err.(*authsdk.APIError).Fields, tt.field)
		})
	}
}

// TestBcryptDeployment verifies the bcrypt hasher end to end.
func TestBcryptDeployment(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t, map[string]string{
		"AUTH_HASH_ALGORITHM": "bcrypt",
	}))

	registerUser(t, client, "frank")

	_, err := client.Login(t.Context(), "frank", testPassword)
	require.NoError(t, err)
}
