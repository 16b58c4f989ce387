package cryptokernel

import (
	"crypto/ecdh"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/internal/werrors"
)

func genX25519(t *testing.T) *ecdh.PrivateKey {
	t.Helper()
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv
}

func TestSealedBoxEncryptDecryptRoundtrip(t *testing.T) {
	priv := genX25519(t)
	plaintext := []byte("Hello, World!")

	ciphertext, err := SealDirect(plaintext, priv.PublicKey())
	require.NoError(t, err)

	decrypted, err := OpenDirect(ciphertext, priv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestSealedBoxWrongKeyFailsDecryption(t *testing.T) {
	priv1 := genX25519(t)
	priv2 := genX25519(t)
	plaintext := []byte("Secret message")

	ciphertext, err := SealDirect(plaintext, priv1.PublicKey())
	require.NoError(t, err)

	_, err = OpenDirect(ciphertext, priv2)
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.DecryptAuth))
}

func TestSealedBoxEmptyMessageWorks(t *testing.T) {
	priv := genX25519(t)

	ciphertext, err := SealDirect([]byte{}, priv.PublicKey())
	require.NoError(t, err)

	decrypted, err := OpenDirect(ciphertext, priv)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestSealedBoxLargeMessageWorks(t *testing.T) {
	priv := genX25519(t)
	plaintext := make([]byte, 10000)
	for i := range plaintext {
		plaintext[i] = byte(i % 256)
	}

	ciphertext, err := SealDirect(plaintext, priv.PublicKey())
	require.NoError(t, err)

	decrypted, err := OpenDirect(ciphertext, priv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestSealedBoxCiphertextDiffersEachTime(t *testing.T) {
	priv := genX25519(t)
	plaintext := []byte("Same message")

	ct1, err := SealDirect(plaintext, priv.PublicKey())
	require.NoError(t, err)
	ct2, err := SealDirect(plaintext, priv.PublicKey())
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2)
}

func TestSealedBoxTruncatedCiphertextRejected(t *testing.T) {
	priv := genX25519(t)
	_, err := OpenDirect(make([]byte, 10), priv)
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.BadKey))
}

func TestGroupEncryptDecryptRoundtrip(t *testing.T) {
	key, err := GenerateGroupKey()
	require.NoError(t, err)
	plaintext := []byte("Group message")

	ciphertext, err := EncryptGroup(plaintext, key)
	require.NoError(t, err)

	decrypted, err := DecryptGroup(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestGroupWrongKeyFails(t *testing.T) {
	key1, err := GenerateGroupKey()
	require.NoError(t, err)
	key2, err := GenerateGroupKey()
	require.NoError(t, err)
	plaintext := []byte("Secret group message")

	ciphertext, err := EncryptGroup(plaintext, key1)
	require.NoError(t, err)

	_, err = DecryptGroup(ciphertext, key2)
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.DecryptAuth))
}

func TestGroupCiphertextDiffersEachTime(t *testing.T) {
	key, err := GenerateGroupKey()
	require.NoError(t, err)
	plaintext := []byte("Same group message")

	ct1, err := EncryptGroup(plaintext, key)
	require.NoError(t, err)
	ct2, err := EncryptGroup(plaintext, key)
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2)
}

func TestGenerateGroupKeyCorrectLength(t *testing.T) {
	key, err := GenerateGroupKey()
	require.NoError(t, err)
	assert.Len(t, key, GroupKeyLen)
}

func TestEncryptGroupRejectsInvalidKeyLength(t *testing.T) {
	_, err := EncryptGroup([]byte("Test"), make([]byte, 16))
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.BadKey))
}

func TestDecryptGroupRejectsTruncatedCiphertext(t *testing.T) {
	key, err := GenerateGroupKey()
	require.NoError(t, err)

	_, err = DecryptGroup(make([]byte, 10), key)
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.BadKey))
}

func TestDecryptGroupRejectsCorruptedCiphertext(t *testing.T) {
	key, err := GenerateGroupKey()
	require.NoError(t, err)
	plaintext := []byte("Test message")

	ciphertext, err := EncryptGroup(plaintext, key)
	require.NoError(t, err)
	ciphertext[len(ciphertext)-1] ^= 0xFF

	_, err = DecryptGroup(ciphertext, key)
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.DecryptAuth))
}

func TestSealedBoxInteroperatesWithDerivedEncryptionKeys(t *testing.T) {
	// Mirrors spec contract 3: a message sealed to the public key an
	// identity publishes must decrypt under the private key derived
	// from that identity's signing seed.
	kp, err := identity.Generate()
	require.NoError(t, err)
	enc, err := identity.DeriveEncryptionKeys(kp)
	require.NoError(t, err)
	published, err := identity.ConvertSigningPublicToEncryption(kp.Public)
	require.NoError(t, err)

	ciphertext, err := SealDirect([]byte("interop"), published)
	require.NoError(t, err)
	plaintext, err := OpenDirect(ciphertext, enc.Private)
	require.NoError(t, err)
	assert.Equal(t, []byte("interop"), plaintext)
}
