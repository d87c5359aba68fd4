package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/credauth/internal/auth/domain"
	"github.com/aussiebroadwan/credauth/internal/auth/store"
	"github.com/aussiebroadwan/credauth/pkg/idx"
)

const (
	insertPrincipalSQL = `INSERT INTO principals (id, username, secret_hash, created_at)
		 VALUES ($1, $2, $3, $4)`
	selectPrincipalByUsernameSQL = `SELECT id, username, secret_hash, created_at
		 FROM principals WHERE username = $1`
)

type principalsRepo struct {
	pool poolIface
}

func (r *principalsRepo) FindByUsername(ctx context.Context, username string) (domain.Principal, error) {
	var p domain.Principal
	err := r.pool.QueryRow(ctx, selectPrincipalByUsernameSQL, username).
		Scan(&p.ID, &p.Username, &p.SecretHash, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Principal{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Principal{}, oops.Code("PRINCIPAL_GET_FAILED").
			With("operation", "find principal by username").
			Wrap(err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// Create is a single INSERT guarded by the unique index on username.
func (r *principalsRepo) Create(ctx context.Context, username, secretHash string) (domain.Principal, error) {
	p := domain.Principal{
		ID:         idx.New().String(),
		Username:   username,
		SecretHash: secretHash,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := r.pool.Exec(ctx, insertPrincipalSQL, p.ID, p.Username, p.SecretHash, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.Principal{}, oops.Code("PRINCIPAL_EXISTS").
				With("constraint", pgErr.ConstraintName).
				Wrap(store.ErrAlreadyExists)
		}
		return domain.Principal{}, oops.Code("PRINCIPAL_CREATE_FAILED").
			With("operation", "create principal").
			Wrap(err)
	}
	return p, nil
}
