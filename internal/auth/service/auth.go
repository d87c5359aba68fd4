package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/credauth/internal/auth/domain"
	"github.com/aussiebroadwan/credauth/internal/auth/metrics"
	"github.com/aussiebroadwan/credauth/internal/auth/store"
	"github.com/aussiebroadwan/credauth/pkg/cryptox"
	"github.com/aussiebroadwan/credauth/pkg/jwtx"
	"github.com/aussiebroadwan/credauth/pkg/slogx"
)

// RegisterResult describes a freshly created principal. It never carries the
// secret or its digest.
type RegisterResult struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// LoginResult carries the bearer token for an authenticated principal.
type LoginResult struct {
	Username  string
	Token     string
	ExpiresAt time.Time
}

// AuthService registers and authenticates principals. It is the only place
// that decides which failures a caller gets to see.
type AuthService struct {
	Store   store.Store
	Hasher  cryptox.Hasher
	Issuer  jwtx.TokenIssuer
	Metrics *metrics.Auth

	// MinSecretLength applies to Register only. Zero means
	// domain.DefaultMinSecretLength.
	MinSecretLength int

	dummyOnce sync.Once
	dummy     string
	dummyErr  error
}

func (s *AuthService) minSecretLength() int {
	if s.MinSecretLength > 0 {
		return s.MinSecretLength
	}
	return domain.DefaultMinSecretLength
}

// Register validates the credentials, hashes the secret and creates the
// principal. A taken username yields ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, secret string) (RegisterResult, error) {
	l := slogx.FromContext(ctx)

	creds := domain.Credentials{Username: username, Secret: secret}
	if err := creds.Validate(s.minSecretLength()); err != nil {
		s.Metrics.RecordRegistration(metrics.OutcomeInvalid)
		return RegisterResult{}, NewValidationError(err)
	}

	digest, err := s.hash(secret)
	if errors.Is(err, cryptox.ErrSecretTooLong) {
		s.Metrics.RecordRegistration(metrics.OutcomeInvalid)
		return RegisterResult{}, &ValidationError{Fields: map[string]string{
			"password": fmt.Sprintf("the length must be no more than %d bytes", cryptox.MaxBcryptSecretLength),
		}}
	}
	if err != nil {
		l.Error("hash secret failed", slog.Any("err", err))
		s.Metrics.RecordRegistration(metrics.OutcomeError)
		return RegisterResult{}, internal(err)
	}

	p, err := s.Store.Principals().Create(ctx, username, digest)
	if errors.Is(err, store.ErrAlreadyExists) {
		l.Info("registration rejected: username taken", slog.String("username", username))
		s.Metrics.RecordRegistration(metrics.OutcomeConflict)
		return RegisterResult{}, ErrConflict
	}
	if err != nil {
		l.Error("create principal failed", slog.String("username", username), slog.Any("err", err))
		s.Metrics.RecordRegistration(metrics.OutcomeError)
		return RegisterResult{}, internal(err)
	}

	l.Info("principal registered", slog.String("username", p.Username), slog.String("principal_id", p.ID))
	s.Metrics.RecordRegistration(metrics.OutcomeSuccess)
	return RegisterResult{ID: p.ID, Username: p.Username, CreatedAt: p.CreatedAt}, nil
}

// Login checks the credentials and issues a token. An unknown username and a
// wrong secret both return ErrUnauthorized after doing the same hashing work.
func (s *AuthService) Login(ctx context.Context, username, secret string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	creds := domain.Credentials{Username: username, Secret: secret}
	if err := creds.Validate(0); err != nil {
		s.Metrics.RecordLogin(metrics.OutcomeInvalid)
		return LoginResult{}, NewValidationError(err)
	}

	p, err := s.Store.Principals().FindByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		dummy, derr := s.dummyDigest()
		if derr != nil {
			l.Error("dummy digest unavailable", slog.Any("err", derr))
			s.Metrics.RecordLogin(metrics.OutcomeError)
			return LoginResult{}, internal(derr)
		}
		s.verify(secret, dummy)
		l.Info("login rejected", slog.String("username", username))
		s.Metrics.RecordLogin(metrics.OutcomeDenied)
		return LoginResult{}, ErrUnauthorized
	case err != nil:
		l.Error("lookup principal failed", slog.String("username", username), slog.Any("err", err))
		s.Metrics.RecordLogin(metrics.OutcomeError)
		return LoginResult{}, internal(err)
	}

	if !s.verify(secret, p.SecretHash) {
		l.Info("login rejected", slog.String("username", username))
		s.Metrics.RecordLogin(metrics.OutcomeDenied)
		return LoginResult{}, ErrUnauthorized
	}

	token, exp, err := s.Issuer.Issue(p.ID, p.Username)
	if err != nil {
		l.Error("issue token failed", slog.String("principal_id", p.ID), slog.Any("err", err))
		s.Metrics.RecordLogin(metrics.OutcomeError)
		return LoginResult{}, internal(err)
	}

	l.Info("principal authenticated", slog.String("username", p.Username), slog.String("principal_id", p.ID))
	s.Metrics.RecordLogin(metrics.OutcomeSuccess)
	return LoginResult{Username: p.Username, Token: token, ExpiresAt: exp}, nil
}

// VerifyToken validates a bearer token without touching the store.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.Issuer.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Debug("token rejected", slog.Any("err", err))
		return jwtx.Claims{}, errors.Join(ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *AuthService) hash(secret string) (string, error) {
	start := time.Now()
	defer func() { s.Metrics.ObserveHash(time.Since(start)) }()
	return s.Hasher.Hash(secret)
}

func (s *AuthService) verify(secret, digest string) bool {
	start := time.Now()
	defer func() { s.Metrics.ObserveHash(time.Since(start)) }()
	return s.Hasher.Verify(secret, digest)
}

// Warm computes the dummy digest up front so the first unknown-user login
// costs the same as every later one.
func (s *AuthService) Warm() error {
	_, err := s.dummyDigest()
	return err
}

// dummyDigest is computed once, by Warm or the first unknown-user login.
func (s *AuthService) dummyDigest() (string, error) {
	s.dummyOnce.Do(func() {
		s.dummy, s.dummyErr = cryptox.DummyDigest(s.Hasher)
	})
	return s.dummy, s.dummyErr
}
