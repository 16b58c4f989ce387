package cryptokernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudokatie/whisper/internal/werrors"
)

func TestSealGroupKeyRoundtrip(t *testing.T) {
	priv := genX25519(t)
	groupKey, err := GenerateGroupKey()
	require.NoError(t, err)

	wrapped, err := SealGroupKey(groupKey, priv.PublicKey())
	require.NoError(t, err)

	unwrapped, err := OpenGroupKey(wrapped, priv)
	require.NoError(t, err)
	assert.Equal(t, groupKey, unwrapped)
}

func TestSealGroupKeyWrongRecipientFails(t *testing.T) {
	priv1 := genX25519(t)
	priv2 := genX25519(t)
	groupKey, err := GenerateGroupKey()
	require.NoError(t, err)

	wrapped, err := SealGroupKey(groupKey, priv1.PublicKey())
	require.NoError(t, err)

	_, err = OpenGroupKey(wrapped, priv2)
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.DecryptAuth))
}

func TestSealGroupKeyDiffersEachTime(t *testing.T) {
	priv := genX25519(t)
	groupKey, err := GenerateGroupKey()
	require.NoError(t, err)

	w1, err := SealGroupKey(groupKey, priv.PublicKey())
	require.NoError(t, err)
	w2, err := SealGroupKey(groupKey, priv.PublicKey())
	require.NoError(t, err)

	assert.NotEqual(t, w1, w2)
}

func TestOpenGroupKeyRejectsTruncatedInput(t *testing.T) {
	priv := genX25519(t)
	_, err := OpenGroupKey(make([]byte, 10), priv)
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.BadKey))
}
