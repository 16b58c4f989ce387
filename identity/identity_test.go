package identity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudokatie/whisper/internal/werrors"
)

func TestCreateThenUnlockRoundtrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.key")

	created, err := Create(path, "correct horse battery staple")
	require.NoError(t, err)

	unlocked, err := Unlock(path, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, created.Public, unlocked.Public)
	assert.Equal(t, created.Seed(), unlocked.Seed())
}

func TestUnlockWithWrongPassphraseFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.key")

	_, err := Create(path, "p1")
	require.NoError(t, err)

	_, err = Unlock(path, "p2")
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.WrongPassphrase))
}

func TestCreateRejectsEmptyPassphrase(t *testing.T) {
	dir := t.TempDir()
	_, err := Create(filepath.Join(dir, "identity.key"), "")
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.InvalidInput))
}

func TestCreateRejectsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.key")
	_, err := Create(path, "p1")
	require.NoError(t, err)

	_, err = Create(path, "p1")
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.AlreadyExists))
}

func TestUnlockMissingFileReturnsNotInitialized(t *testing.T) {
	dir := t.TempDir()
	_, err := Unlock(filepath.Join(dir, "nope.key"), "p1")
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.NotInitialized))
}

func TestNodeIDIsStableAndDeterministic(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)
	assert.Equal(t, kp.NodeID(), kp.NodeID())
	assert.NotEmpty(t, kp.NodeID())
}

func TestNodeIDFromPublicKeyMatchesKeyPairNodeID(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)
	assert.Equal(t, kp.NodeID(), NodeIDFromPublicKey(kp.Public))
}

func TestExportImportPublicRoundtrips(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	exported := kp.ExportPublic()
	imported, err := ImportPublic(exported)
	require.NoError(t, err)
	assert.Equal(t, kp.Public, imported)
}

func TestImportPublicRejectsMalformedInput(t *testing.T) {
	_, err := ImportPublic("not-base64!!")
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.InvalidInput))

	_, err = ImportPublic("aGVsbG8=")
	require.Error(t, err)
	assert.True(t, werrors.Is(err, werrors.BadKey))
}

func TestDeriveEncryptionKeysIsDeterministicFromSeed(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	enc1, err := DeriveEncryptionKeys(kp)
	require.NoError(t, err)
	enc2, err := DeriveEncryptionKeys(kp)
	require.NoError(t, err)

	assert.Equal(t, enc1.Public.Bytes(), enc2.Public.Bytes())
}

func TestConvertSigningPublicToEncryptionMatchesDerivedPrivate(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	fromPriv, err := DeriveEncryptionKeys(kp)
	require.NoError(t, err)

	fromPub, err := ConvertSigningPublicToEncryption(kp.Public)
	require.NoError(t, err)

	assert.Equal(t, fromPriv.Public.Bytes(), fromPub.Bytes(),
		"the public-key birational map must match the secret-key derivation (spec contract 3)")
}
