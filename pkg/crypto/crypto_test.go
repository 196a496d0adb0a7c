package crypto

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var template = bytes.Repeat([]byte("ridge bifurcation "), 40)

func secret(t *testing.T) []byte {
	t.Helper()
	s := make([]byte, 32)
	r := rand.New(rand.NewSource(42))
	_, err := r.Read(s)
	require.NoError(t, err)
	return s
}

func TestSealOpenPrint(t *testing.T) {
	sealed, err := SealPrint(secret(t), template)
	require.NoError(t, err)
	assert.Len(t, sealed.Salt, saltSize)
	assert.Equal(t, uint(len(template)), sealed.OrigSize)
	assert.Less(t, len(sealed.Ciphertext), len(template))

	opened, err := OpenPrint(secret(t), sealed)
	require.NoError(t, err)
	assert.Equal(t, template, opened)
}

func TestSealPrint_FreshSalt(t *testing.T) {
	a, err := SealPrint(secret(t), template)
	require.NoError(t, err)
	b, err := SealPrint(secret(t), template)
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestOpenPrint_WrongSecret(t *testing.T) {
	sealed, err := SealPrint(secret(t), template)
	require.NoError(t, err)

	_, err = OpenPrint([]byte("another host"), sealed)
	assert.Error(t, err)
}

func TestOpenPrint_TamperedSize(t *testing.T) {
	sealed, err := SealPrint(secret(t), template)
	require.NoError(t, err)

	sealed.OrigSize++
	_, err = OpenPrint(secret(t), sealed)
	assert.Error(t, err)
}

func TestDeriveKey(t *testing.T) {
	salt := make([]byte, saltSize)

	_, err := DeriveKey(nil, salt)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = DeriveKey([]byte("s"), salt[:4])
	assert.ErrorIs(t, err, ErrInvalidSalt)

	a, err := DeriveKey([]byte("s"), salt)
	require.NoError(t, err)
	b, err := DeriveKey([]byte("s"), salt)
	require.NoError(t, err)
	assert.Len(t, a, keySize)
	assert.Equal(t, a, b)
}
