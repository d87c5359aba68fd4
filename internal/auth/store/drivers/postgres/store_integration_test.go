//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/credauth/internal/auth/store"
	"github.com/aussiebroadwan/credauth/internal/auth/store/drivers/postgres"
)

func setupPostgres(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:18-alpine",
		tcpostgres.WithDatabase("credauth_test"),
		tcpostgres.WithUsername("credauth"),
		tcpostgres.WithPassword("credauth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := postgres.NewStore(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations(ctx))
	require.NoError(t, s.ApplyMigrations(ctx), "second run is a no-op")
	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("create then find", func(t *testing.T) {
		p, err := s.Principals().Create(ctx, "alice", "digest")
		require.NoError(t, err)

		got, err := s.Principals().FindByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, p.ID, got.ID)
		require.True(t, p.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := s.Principals().Create(ctx, "alice", "other")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Principals().FindByUsername(ctx, "ALICE")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("concurrent creates have one winner", func(t *testing.T) {
		const n = 20
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			wins     int
			conflict int
		)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Principals().Create(ctx, "racer", "digest")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, store.ErrAlreadyExists):
					conflict++
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 1, wins)
		require.Equal(t, n-1, conflict)
	})
}
