package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/credauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

	c := jwtx.NewClaims("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", "alice", "credauth", jwtx.DefaultTTL, now)

	require.Equal(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", c.Subject)
	require.Equal(t, "alice", c.Username)
	require.Equal(t, "credauth", c.Issuer)
	require.NotEmpty(t, c.ID)

	whole := now.Truncate(time.Second)
	require.Equal(t, whole, c.IssuedAt.Time.UTC())
	require.Equal(t, whole, c.NotBefore.Time.UTC())
	require.Equal(t, whole.Add(24*time.Hour), c.ExpiresAt.Time.UTC())
}

func TestNewJTIIsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for range 100 {
		j := jwtx.NewJTI()
		require.NotContains(t, seen, j)
		seen[j] = struct{}{}
	}
}
