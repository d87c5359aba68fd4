package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher turns plaintext secrets into salted one-way digests and checks
// plaintext against them. Verify never errors: a malformed digest is just
// a mismatch.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// Argon2Params are the tunables baked into every argon2id digest. Zero
// fields fall back to DefaultArgon2Params.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultArgon2Params follow the OWASP minimum for argon2id (19 MiB, t=2, p=1).
var DefaultArgon2Params = Argon2Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// DefaultBcryptCost matches what the legacy deployment used for its digests.
const DefaultBcryptCost = 10

// Upper bounds applied when reading parameters back out of a stored digest,
// so a tampered row can't make us allocate gigabytes.
const (
	maxArgon2Memory = 1 << 21 // 2 GiB in KiB
	maxArgon2Time   = 64
	maxKeyLength    = 1024
)

// MaxBcryptSecretLength is the longest input bcrypt accepts, in bytes.
const MaxBcryptSecretLength = 72

var (
	ErrEmptySecret   = errors.New("cryptox: empty secret")
	ErrSecretTooLong = fmt.Errorf("cryptox: secret longer than %d bytes", MaxBcryptSecretLength)
)

// Argon2idHasher produces PHC formatted argon2id digests:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
//
// An optional pepper is appended to the plaintext before hashing.
type Argon2idHasher struct {
	params Argon2Params
	pepper string
}

func NewArgon2idHasher(p Argon2Params, pepper string) *Argon2idHasher {
	d := DefaultArgon2Params
	if p.Memory == 0 {
		p.Memory = d.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = d.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = d.Parallelism
	}
	if p.KeyLength == 0 {
		p.KeyLength = d.KeyLength
	}
	if p.SaltLength == 0 {
		p.SaltLength = d.SaltLength
	}
	return &Argon2idHasher{params: p, pepper: pepper}
}

// Params reports the effective parameters new digests are written with.
func (h *Argon2idHasher) Params() Argon2Params { return h.params }

func (h *Argon2idHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptySecret
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: read salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext+h.pepper),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(plaintext, digest string) bool {
	return verifyDigest(plaintext, digest, h.pepper)
}

// BcryptHasher writes bcrypt digests. Bcrypt only looks at the first 72
// bytes of input and refuses anything longer, and it is never peppered.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptySecret
	}
	if len(plaintext) > MaxBcryptSecretLength {
		return "", ErrSecretTooLong
	}

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return verifyDigest(plaintext, digest, "")
}

// verifyDigest picks the algorithm from the digest prefix so either hasher
// can check rows written by the other.
func verifyDigest(plaintext, digest, pepper string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return verifyArgon2id(plaintext+pepper, digest)
	case isBcrypt(digest):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	default:
		return false
	}
}

func isBcrypt(digest string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(digest, p) {
			return true
		}
	}
	return false
}

func verifyArgon2id(input, digest string) bool {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var mem, iters, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return false
	}
	if mem == 0 || mem > maxArgon2Memory || iters == 0 || iters > maxArgon2Time || par == 0 || par > 255 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 || len(want) > maxKeyLength {
		return false
	}

	got := argon2.IDKey([]byte(input), salt, iters, mem, uint8(par), uint32(len(want))) // #nosec G115 -- bounded above
	return subtle.ConstantTimeCompare(got, want) == 1
}

// GenerateSecret returns a random alphanumeric string of the given length.
func GenerateSecret(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("cryptox: generate secret: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}

// DummyDigest hashes a throwaway random secret with h. Verifying against it
// costs the same as verifying a real digest and never succeeds, which lets
// callers keep the unknown-user path as slow as the wrong-secret path.
func DummyDigest(h Hasher) (string, error) {
	secret, err := GenerateSecret(32)
	if err != nil {
		return "", err
	}
	return h.Hash(secret)
}
