package cryptox

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Algorithm names the adaptive hash used for new passwords.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// DefaultBcryptCost matches the work factor of hashes already stored by the
// Express backend, so existing rows neither fail nor get flagged for rehash.
const DefaultBcryptCost = 10

var (
	ErrPasswordTooLong  = bcrypt.ErrPasswordTooLong
	ErrUnknownAlgorithm = errors.New("cryptox: unknown hash algorithm")
)

// ParseAlgorithm validates an algorithm name from configuration.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgorithmBcrypt, AlgorithmArgon2id:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

type HasherConfig struct {
	Algorithm  Algorithm
	BcryptCost int
	Argon2     Argon2Params

	// Concurrency caps simultaneous hash/verify operations. Zero means
	// runtime.GOMAXPROCS(0).
	Concurrency int64
}

// DefaultHasherConfig hashes with bcrypt at DefaultBcryptCost.
func DefaultHasherConfig() HasherConfig {
	return HasherConfig{
		Algorithm:  AlgorithmBcrypt,
		BcryptCost: DefaultBcryptCost,
		Argon2:     DefaultArgon2Params,
	}
}

// Hasher hashes and verifies passwords. It is safe for concurrent use; the
// CPU-heavy work is gated by a weighted semaphore so a burst of logins cannot
// starve the rest of the process.
type Hasher struct {
	cfg HasherConfig
	sem *semaphore.Weighted
}

func NewHasher(cfg HasherConfig) (*Hasher, error) {
	switch cfg.Algorithm {
	case "":
		cfg.Algorithm = AlgorithmBcrypt
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, cfg.Algorithm)
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("cryptox: bcrypt cost %d out of range [%d,%d]",
			cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	if cfg.Argon2 == (Argon2Params{}) {
		cfg.Argon2 = DefaultArgon2Params
	}
	if err := cfg.Argon2.validate(); err != nil {
		return nil, err
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = int64(runtime.GOMAXPROCS(0))
	}

	return &Hasher{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.Concurrency),
	}, nil
}

// Algorithm reports the algorithm used for new hashes.
func (h *Hasher) Algorithm() Algorithm { return h.cfg.Algorithm }

// Hash derives a salted hash of password. Two calls with the same input never
// return the same string.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	switch h.cfg.Algorithm {
	case AlgorithmArgon2id:
		return hashArgon2id(password, h.cfg.Argon2)
	default:
		b, err := bcrypt.GenerateFromPassword([]byte(password), h.cfg.BcryptCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// Verify reports whether password matches encodedHash. Any hash this package
// can produce is accepted regardless of the configured algorithm. Malformed
// hashes and a cancelled ctx yield false.
func (h *Hasher) Verify(ctx context.Context, password, encodedHash string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	switch {
	case isBcrypt(encodedHash):
		// bcrypt only reads the first 72 bytes; anything longer could never
		// have been hashed here.
		if len(password) > maxBcryptPasswordLen {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	case strings.HasPrefix(encodedHash, argon2idPrefix):
		return verifyArgon2id(password, encodedHash) == nil
	default:
		return false
	}
}

// NeedsRehash reports whether encodedHash was produced with a different
// algorithm or weaker parameters than the hasher is configured for.
func (h *Hasher) NeedsRehash(encodedHash string) bool {
	switch h.cfg.Algorithm {
	case AlgorithmArgon2id:
		p, _, _, err := parseArgon2id(encodedHash)
		if err != nil {
			return true
		}
		return p.Memory < h.cfg.Argon2.Memory ||
			p.Iterations < h.cfg.Argon2.Iterations ||
			p.Parallelism < h.cfg.Argon2.Parallelism ||
			p.KeyLength < h.cfg.Argon2.KeyLength
	default:
		if !isBcrypt(encodedHash) {
			return true
		}
		cost, err := bcrypt.Cost([]byte(encodedHash))
		if err != nil {
			return true
		}
		return cost < h.cfg.BcryptCost
	}
}

// maxBcryptPasswordLen is the input limit of bcrypt.
const maxBcryptPasswordLen = 72

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}

// GeneratePassword returns a random 16 character alphanumeric password.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
