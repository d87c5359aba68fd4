package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/credauth/internal/auth/domain"
	"github.com/aussiebroadwan/credauth/internal/auth/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/credauth/pkg/idx"
)

type principalsRepo struct {
	q *gen.Queries
}

func (r *principalsRepo) FindByUsername(ctx context.Context, username string) (domain.Principal, error) {
	row, err := r.q.GetPrincipalByUsername(ctx, username)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return mapPrincipal(row), nil
}

// Create relies on the UNIQUE index on username. There is deliberately no
// lookup first: the insert either wins or fails with a constraint error.
func (r *principalsRepo) Create(ctx context.Context, username, secretHash string) (domain.Principal, error) {
	row := gen.CreatePrincipalParams{
		ID:         idx.New().String(),
		Username:   username,
		SecretHash: secretHash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.q.CreatePrincipal(ctx, row); err != nil {
		return domain.Principal{}, mapUniqueViolation(err)
	}
	return mapPrincipal(gen.Principal(row)), nil
}
