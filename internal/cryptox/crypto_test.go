package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
var testParams = Params{Memory: 64, Time: 1, Threads: 1, SaltLen: 8, KeyLen: 16}

func TestHashPassword_Format(t *testing.T) {
	h, err := HashPassword("correct horse", testParams)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=64,t=1,p=1$"), h)
	assert.Len(t, strings.Split(h, "$"), 6)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPassword("same", testParams)
	require.NoError(t, err)
	b, err := HashPassword("same", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two hashes of the same password must differ by salt")
}

func TestVerifyPassword(t *testing.T) {
	h, err := HashPassword("s3cret-pass", testParams)
	require.NoError(t, err)

	ok, err := VerifyPassword(h, "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(h, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$",
	} {
		_, err := VerifyPassword(in, "x")
		assert.ErrorIs(t, err, ErrMalformedHash, in)
	}
}
