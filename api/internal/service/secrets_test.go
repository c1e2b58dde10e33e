package service

import (
	"checkout/blockchain/sol"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretsSealOpen(t *testing.T) {
	s, err := NewSecretsService(newHexKey(t))
	require.NoError(t, err)

	plaintext := gofakeit.LetterN(88)
	sealed, err := s.Seal(plaintext, "addr-1")
	require.NoError(t, err)
	assert.NotContains(t, sealed, plaintext)

	opened, err := s.Open(sealed, "addr-1")
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)

	// bound to the address it was sealed for
	_, err = s.Open(sealed, "addr-2")
	assert.Error(t, err)

	other, err := NewSecretsService(newHexKey(t))
	require.NoError(t, err)
	_, err = other.Open(sealed, "addr-1")
	assert.Error(t, err)
}

func TestSecretsBadKey(t *testing.T) {
	for _, key := range []string{"", "zz", strings.Repeat("ab", 16), strings.Repeat("ab", 33)} {
		_, err := NewSecretsService(key)
		assert.Error(t, err, key)
	}
}

func TestWalletsGenerateOpen(t *testing.T) {
	wallets := newWallets(t)

	seen := map[string]bool{}
	for range 20 {
		address, sealed, err := wallets.Generate()
		require.NoError(t, err)
		require.True(t, sol.IsValidAddress(address))
		require.False(t, seen[address])
		seen[address] = true

		key, err := wallets.Open(sealed, address)
		require.NoError(t, err)
		assert.Equal(t, address, key.PublicKey().String())
	}
}

func TestWalletsOpenMismatch(t *testing.T) {
	wallets := newWallets(t)

	_, sealed, err := wallets.Generate()
	require.NoError(t, err)
	other, _, err := wallets.Generate()
	require.NoError(t, err)

	_, err = wallets.Open(sealed, other)
	assert.Error(t, err)
}
