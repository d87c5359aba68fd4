package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fastParams keep the suite quick, the defaults take ~20MiB per hash.
var fastParams = Argon2Params{Memory: 1024, Iterations: 1}

func TestArgon2idHash_Format(t *testing.T) {
	h := NewArgon2idHasher(Argon2Params{}, "")

	digest, err := h.Hash("password123")
	require.NoError(t, err)

	parts := strings.Split(digest, "$")
	require.Len(t, parts, 6, "PHC digest should have 6 parts")
	require.Equal(t, "argon2id", parts[1])
	require.Equal(t, "v=19", parts[2])
	require.Equal(t, "m=19456,t=2,p=1", parts[3])
	require.NotEmpty(t, parts[4], "salt")
	require.NotEmpty(t, parts[5], "hash")
}

func TestArgon2idHash_SaltedPerCall(t *testing.T) {
	h := NewArgon2idHasher(fastParams, "")

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "two digests of the same secret must differ")
	require.True(t, h.Verify("secret1", a))
	require.True(t, h.Verify("secret1", b))
}

func TestArgon2idHash_RejectsEmpty(t *testing.T) {
	_, err := NewArgon2idHasher(fastParams, "").Hash("")
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestArgon2idVerify(t *testing.T) {
	h := NewArgon2idHasher(fastParams, "")
	digest, err := h.Hash("correct-password")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"correct", "correct-password", true},
		{"wrong", "wrong-password", false},
		{"case difference", "Correct-Password", false},
		{"trailing space", "correct-password ", false},
		{"prefix", "correct-passwor", false},
		{"empty", "", false},
		{"very long", strings.Repeat("x", 10000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, h.Verify(tt.input, digest))
		})
	}
}

func TestVerify_MalformedDigests(t *testing.T) {
	h := NewArgon2idHasher(fastParams, "")

	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"plaintext", "abcdef123"},
		{"unknown algorithm", "$scrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA"},
		{"bad hash", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$!!!"},
		{"wrong version", "$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA"},
		{"zero parallelism", "$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$aGFzaA"},
		{"absurd memory", "$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdA$aGFzaA"},
		{"truncated bcrypt", "$2a$10$tooshort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, h.Verify("abcdef123", tt.digest))
			})
		})
	}
}

func TestArgon2idVerify_Pepper(t *testing.T) {
	peppered := NewArgon2idHasher(fastParams, "pepper-a")
	digest, err := peppered.Hash("abcdef123")
	require.NoError(t, err)

	require.True(t, peppered.Verify("abcdef123", digest))
	require.False(t, NewArgon2idHasher(fastParams, "pepper-b").Verify("abcdef123", digest))
	require.False(t, NewArgon2idHasher(fastParams, "").Verify("abcdef123", digest))
}

func TestArgon2idVerify_ReadsParamsFromDigest(t *testing.T) {
	old := NewArgon2idHasher(Argon2Params{Memory: 2048, Iterations: 1}, "")
	digest, err := old.Hash("abcdef123")
	require.NoError(t, err)
	require.Contains(t, digest, "m=2048,t=1,p=1")

	// A hasher with different params still accepts digests written by the old one.
	require.True(t, NewArgon2idHasher(fastParams, "").Verify("abcdef123", digest))
}

func TestBcrypt_CrossVerification(t *testing.T) {
	b := NewBcryptHasher(4)

	digest, err := b.Hash("abcdef123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(digest, "$2a$"))

	require.True(t, b.Verify("abcdef123", digest))
	require.False(t, b.Verify("abcdef124", digest))

	// Rows written by the legacy bcrypt deployment keep working after the
	// switch to argon2id.
	a := NewArgon2idHasher(fastParams, "some-pepper")
	require.True(t, a.Verify("abcdef123", digest))

	argonDigest, err := NewArgon2idHasher(fastParams, "").Hash("abcdef123")
	require.NoError(t, err)
	require.True(t, b.Verify("abcdef123", argonDigest))
}

func TestBcrypt_RejectsOverlongSecret(t *testing.T) {
	b := NewBcryptHasher(4)

	_, err := b.Hash(strings.Repeat("x", MaxBcryptSecretLength+1))
	require.ErrorIs(t, err, ErrSecretTooLong)

	_, err = b.Hash(strings.Repeat("x", MaxBcryptSecretLength))
	require.NoError(t, err)

	// argon2id has no such ceiling
	_, err = NewArgon2idHasher(fastParams, "").Hash(strings.Repeat("x", MaxBcryptSecretLength+1))
	require.NoError(t, err)
}

func TestBcrypt_CostOutOfRangeUsesDefault(t *testing.T) {
	require.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).cost)
	require.Equal(t, DefaultBcryptCost, NewBcryptHasher(99).cost)
	require.Equal(t, 12, NewBcryptHasher(12).cost)
}

func TestDummyDigest_NeverMatches(t *testing.T) {
	h := NewArgon2idHasher(fastParams, "")

	dummy, err := DummyDigest(h)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dummy, "$argon2id$"))

	for _, guess := range []string{"", "password", "abcdef123", dummy} {
		require.False(t, h.Verify(guess, dummy))
	}
}

func TestGenerateSecret(t *testing.T) {
	seen := make(map[string]struct{}, 50)
	for range 50 {
		s, err := GenerateSecret(16)
		require.NoError(t, err)
		require.Len(t, s, 16)
		for _, c := range s {
			ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			require.True(t, ok, "unexpected character %q", c)
		}
		require.NotContains(t, seen, s)
		seen[s] = struct{}{}
	}
}

func TestLoadPepper(t *testing.T) {
	t.Run("empty path disables pepper", func(t *testing.T) {
		p, err := LoadPepper("")
		require.NoError(t, err)
		require.Empty(t, p)
	})

	t.Run("generates then reloads", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "pepper")

		first, err := LoadPepper(path)
		require.NoError(t, err)
		require.NotEmpty(t, first)

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		second, err := LoadPepper(path)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("trims whitespace from existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pepper")
		require.NoError(t, os.WriteFile(path, []byte("abc\n"), 0o600))

		p, err := LoadPepper(path)
		require.NoError(t, err)
		require.Equal(t, "abc", p)
	})
}
