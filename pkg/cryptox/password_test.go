package cryptox

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Low-cost parameters keep the suite fast; production costs are exercised
// by TestDefaultHasherConfig only.
func newTestHasher(t *testing.T, alg Algorithm) *Hasher {
	t.Helper()
	h, err := NewHasher(HasherConfig{
		Algorithm:  alg,
		BcryptCost: bcrypt.MinCost,
		Argon2: Argon2Params{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			KeyLength:   32,
			SaltLength:  16,
		},
	})
	require.NoError(t, err)
	return h
}

func TestHasher_HashAndVerify(t *testing.T) {
	passwords := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, alg := range []Algorithm{AlgorithmBcrypt, AlgorithmArgon2id} {
		h := newTestHasher(t, alg)
		for _, tt := range passwords {
			t.Run(string(alg)+"/"+tt.name, func(t *testing.T) {
				ctx := context.Background()
				hash, err := h.Hash(ctx, tt.password)
				require.NoError(t, err)
				require.NotEmpty(t, hash)

				require.True(t, h.Verify(ctx, tt.password, hash))
				require.False(t, h.Verify(ctx, tt.password+"x", hash))
			})
		}
	}
}

func TestHasher_UniqueSalts(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(string(alg), func(t *testing.T) {
			ctx := context.Background()
			h := newTestHasher(t, alg)

			hash1, err := h.Hash(ctx, "samepassword")
			require.NoError(t, err)
			hash2, err := h.Hash(ctx, "samepassword")
			require.NoError(t, err)

			require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
			require.True(t, h.Verify(ctx, "samepassword", hash1))
			require.True(t, h.Verify(ctx, "samepassword", hash2))
		})
	}
}

func TestHasher_WrongPassword(t *testing.T) {
	ctx := context.Background()
	h := newTestHasher(t, AlgorithmBcrypt)
	hash, err := h.Hash(ctx, "correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		"correct-passwor",
	} {
		require.False(t, h.Verify(ctx, wrong, hash), "password %q", wrong)
	}
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	ctx := context.Background()
	h := newTestHasher(t, AlgorithmBcrypt)

	for _, bad := range []string{
		"",
		"plaintext",
		"$2b$",
		"$2b$10$tooshort",
		"$2b$99$abcdefghijklmnopqrstuvabcdefghijklmnopqrstuvwxyz01234",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456",
		"$argon2id$v=19$invalid$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		require.NotPanics(t, func() {
			require.False(t, h.Verify(ctx, "test-password", bad), "hash %q", bad)
		})
	}
}

func TestHasher_VerifiesLegacyBcrypt(t *testing.T) {
	// Hash produced by bcryptjs with cost 10, as stored by the Express backend.
	legacy, err := bcrypt.GenerateFromPassword([]byte("pw1"), 10)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(legacy), "$2a$10$"))

	h := newTestHasher(t, AlgorithmArgon2id)
	require.True(t, h.Verify(context.Background(), "pw1", string(legacy)))
	require.True(t, h.Verify(context.Background(), "pw1", strings.Replace(string(legacy), "$2a$", "$2b$", 1)))
}

func TestHasher_CrossAlgorithmVerify(t *testing.T) {
	ctx := context.Background()
	bh := newTestHasher(t, AlgorithmBcrypt)
	ah := newTestHasher(t, AlgorithmArgon2id)

	argonHash, err := ah.Hash(ctx, "secret")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(argonHash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	require.True(t, bh.Verify(ctx, "secret", argonHash))

	bcryptHash, err := bh.Hash(ctx, "secret")
	require.NoError(t, err)
	require.True(t, ah.Verify(ctx, "secret", bcryptHash))
}

func TestHasher_PasswordTooLong(t *testing.T) {
	h := newTestHasher(t, AlgorithmBcrypt)
	_, err := h.Hash(context.Background(), strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)

	// argon2id has no such limit.
	ah := newTestHasher(t, AlgorithmArgon2id)
	hash, err := ah.Hash(context.Background(), strings.Repeat("a", 200))
	require.NoError(t, err)
	require.True(t, ah.Verify(context.Background(), strings.Repeat("a", 200), hash))
}

func TestHasher_VerifyRejectsLongerPasswordWithSamePrefix(t *testing.T) {
	ctx := context.Background()
	h := newTestHasher(t, AlgorithmBcrypt)

	password := strings.Repeat("a", 72)
	hash, err := h.Hash(ctx, password)
	require.NoError(t, err)

	require.True(t, h.Verify(ctx, password, hash))
	require.False(t, h.Verify(ctx, password+"x", hash))
	require.False(t, h.Verify(ctx, password+"-attacker-suffix", hash))
}

func TestHasher_NeedsRehash(t *testing.T) {
	ctx := context.Background()

	cheap := newTestHasher(t, AlgorithmBcrypt)
	cheapHash, err := cheap.Hash(ctx, "pw")
	require.NoError(t, err)
	require.False(t, cheap.NeedsRehash(cheapHash))

	stronger, err := NewHasher(HasherConfig{Algorithm: AlgorithmBcrypt, BcryptCost: bcrypt.MinCost + 1})
	require.NoError(t, err)
	require.True(t, stronger.NeedsRehash(cheapHash), "lower bcrypt cost should be upgraded")

	argon := newTestHasher(t, AlgorithmArgon2id)
	require.True(t, argon.NeedsRehash(cheapHash), "algorithm change should be upgraded")

	argonHash, err := argon.Hash(ctx, "pw")
	require.NoError(t, err)
	require.False(t, argon.NeedsRehash(argonHash))
	require.True(t, cheap.NeedsRehash(argonHash))

	require.True(t, cheap.NeedsRehash("garbage"))
	require.True(t, argon.NeedsRehash("garbage"))
}

func TestHasher_CancelledContext(t *testing.T) {
	h, err := NewHasher(HasherConfig{Algorithm: AlgorithmBcrypt, BcryptCost: bcrypt.MinCost, Concurrency: 1})
	require.NoError(t, err)

	hash, err := h.Hash(context.Background(), "pw")
	require.NoError(t, err)

	// Hold the only slot so the next caller has to wait.
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = h.Hash(ctx, "pw")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, h.Verify(ctx, "pw", hash))
}

func TestHasher_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	h := newTestHasher(t, AlgorithmBcrypt)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := h.Hash(ctx, "concurrent")
			if err != nil {
				errs <- err
				return
			}
			if !h.Verify(ctx, "concurrent", hash) {
				errs <- errMismatch
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestNewHasher_Validation(t *testing.T) {
	_, err := NewHasher(HasherConfig{Algorithm: "scrypt"})
	require.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = NewHasher(HasherConfig{Algorithm: AlgorithmBcrypt, BcryptCost: 2})
	require.Error(t, err)

	_, err = NewHasher(HasherConfig{Algorithm: AlgorithmArgon2id, Argon2: Argon2Params{Memory: 1}})
	require.Error(t, err)
}

func TestDefaultHasherConfig(t *testing.T) {
	h, err := NewHasher(DefaultHasherConfig())
	require.NoError(t, err)
	require.Equal(t, AlgorithmBcrypt, h.Algorithm())

	hash, err := h.Hash(context.Background(), "pw1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2a$10$"))
	require.False(t, h.NeedsRehash(hash))
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("Argon2id")
	require.NoError(t, err)
	require.Equal(t, AlgorithmArgon2id, a)

	_, err = ParseAlgorithm("md5")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool, 50)
	for range 50 {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, 16)

		for _, char := range password {
			valid := (char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9')
			require.True(t, valid, "password should only contain alphanumeric characters")
		}
		require.NotContains(t, seen, password, "duplicate password generated")
		seen[password] = true
	}
}
