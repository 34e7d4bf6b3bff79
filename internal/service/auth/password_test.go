package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHashAndCompare(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher()
	verifier := NewBcryptVerifier()

	hash, err := hasher.Hash("Sup3rSecret")
	require.NoError(t, err)

	assert.NotEqual(t, "Sup3rSecret", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"), "bcrypt hash format")

	assert.NoError(t, verifier.Compare(hash, "Sup3rSecret"))
	assert.Error(t, verifier.Compare(hash, "WrongPassword1"))
}

func TestBcryptHashIsSalted(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher()

	first, err := hasher.Hash("Sup3rSecret")
	require.NoError(t, err)

	second, err := hasher.Hash("Sup3rSecret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same input must produce distinct hashes")
}
