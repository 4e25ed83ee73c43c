package auth

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// cheap parameters keep the suite fast
var testParams = cryptox.Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1}

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := NewArgon2idHasher(testParams)

	for _, pw := range []string{"s3cret!", "", "пароль", strings.Repeat("x", 1024)} {
		encoded, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$"), encoded)
		assert.True(t, h.Verify(pw, encoded), "password %q must verify", pw)
	}
}

func TestHasher_Mismatch(t *testing.T) {
	t.Parallel()
	h := NewArgon2idHasher(testParams)

	encoded, err := h.Hash("s3cret!")
	require.NoError(t, err)

	assert.False(t, h.Verify("wrong", encoded))
	assert.False(t, h.Verify("s3cret", encoded))
	assert.False(t, h.Verify("S3cret!", encoded))
}

func TestHasher_SaltedPerCall(t *testing.T) {
	t.Parallel()
	h := NewArgon2idHasher(testParams)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestHasher_VerifyUsesEmbeddedParams(t *testing.T) {
	t.Parallel()
	old := NewArgon2idHasher(cryptox.Params{MemoryKiB: 32, Iterations: 2, Parallelism: 2})
	encoded, err := old.Hash("pw")
	require.NoError(t, err)

	current := NewArgon2idHasher(testParams)
	assert.True(t, current.Verify("pw", encoded))
	assert.True(t, current.NeedsRehash(encoded))
}

func TestHasher_MalformedNeverMatches(t *testing.T) {
	t.Parallel()
	h := NewArgon2idHasher(testParams)

	for _, encoded := range []string{"", "plain", "$argon2id$", "$argon2id$v=19$m=64,t=1,p=1$$", "$2a$10$short"} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("pw", encoded))
		})
	}
}

func TestHasher_LegacyBcrypt(t *testing.T) {
	t.Parallel()
	h := NewArgon2idHasher(testParams)

	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, h.Verify("hunter2", string(legacy)))
	assert.False(t, h.Verify("hunter3", string(legacy)))
	assert.True(t, h.NeedsRehash(string(legacy)))
}

func TestHasher_NeedsRehash(t *testing.T) {
	t.Parallel()
	h := NewArgon2idHasher(testParams)

	fresh, err := h.Hash("pw")
	require.NoError(t, err)

	assert.False(t, h.NeedsRehash(fresh))
	assert.True(t, h.NeedsRehash("garbage"))
}
