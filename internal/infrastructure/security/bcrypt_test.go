package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidpech/user_service/internal/domain/user"
)

var _ user.PasswordHasher = (*BcryptHasher)(nil)

func TestHashRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Passw0rd!")

	require.NoError(t, err)
	require.NotEqual(t, "Passw0rd!", hash)
	require.True(t, strings.HasPrefix(hash, "$2a$"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Passw0rd!")))
	require.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("passw0rd!")))
}

func TestHashIsSalted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	require.Equal(t, bcrypt.MinCost, NewBcryptHasher(1).Cost)
	require.Equal(t, bcrypt.MaxCost, NewBcryptHasher(99).Cost)
	require.Equal(t, 12, NewBcryptHasher(12).Cost)
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", 73))

	require.Error(t, err)
}
