package authsdk

import "time"

// ErrorResponse is the body of every non-2xx response from the service.
type ErrorResponse struct {
	// Error is the machine readable code (e.g. "invalid_request", "user_exists")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`

	// Fields holds per-field validation messages, only set for invalid_request
	Fields map[string]string `json:"fields,omitempty"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// ConfirmPassword is optional. When present it must equal Password.
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// RegisterResponse is returned with 201 Created.
type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned with 200 OK on a successful login.
type LoginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`

	// Token is the HS256 bearer token. It is only ever returned here.
	Token string `json:"token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresAt is when Token stops verifying (issued at + 24h)
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks breaks readiness down per dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ServiceInfo is the descriptor served at GET /.
type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// SessionResponse describes the principal behind a bearer token. It is built
// from the token alone.
type SessionResponse struct {
	Subject   string    `json:"sub"`
	Username  string    `json:"username"`
	Issuer    string    `json:"iss"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
