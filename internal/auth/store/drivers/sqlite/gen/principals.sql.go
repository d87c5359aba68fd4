package gen

import (
	"context"
	"time"
)

const createPrincipal = `-- name: CreatePrincipal :exec
INSERT INTO principals (id, username, secret_hash, created_at)
VALUES (?, ?, ?, ?)
`

type CreatePrincipalParams struct {
	ID         string
	Username   string
	SecretHash string
	CreatedAt  time.Time
}

func (q *Queries) CreatePrincipal(ctx context.Context, arg CreatePrincipalParams) error {
	_, err := q.db.ExecContext(ctx, createPrincipal,
		arg.ID,
		arg.Username,
		arg.SecretHash,
		arg.CreatedAt,
	)
	return err
}

const getPrincipalByUsername = `-- name: GetPrincipalByUsername :one
SELECT id, username, secret_hash, created_at FROM principals
WHERE username = ?
`

func (q *Queries) GetPrincipalByUsername(ctx context.Context, username string) (Principal, error) {
	row := q.db.QueryRowContext(ctx, getPrincipalByUsername, username)
	var i Principal
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.SecretHash,
		&i.CreatedAt,
	)
	return i, err
}
