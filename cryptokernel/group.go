package cryptokernel

import (
	"crypto/rand"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/sudokatie/whisper/internal/werrors"
)

// GroupKeyLen is the length of a group's symmetric key (spec §3).
const GroupKeyLen = 32

// GenerateGroupKey returns a fresh random 32-byte group symmetric key.
func GenerateGroupKey() ([]byte, error) {
	key := make([]byte, GroupKeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, werrors.New(werrors.IoError, "generating group key", err)
	}
	return key, nil
}

// EncryptGroup authenticates and encrypts plaintext under groupKey using
// XSalsa20-Poly1305 (secretbox); a fresh 24-byte nonce is generated and
// prepended to the output (spec §4.2).
func EncryptGroup(plaintext, groupKey []byte) ([]byte, error) {
	if len(groupKey) != GroupKeyLen {
		return nil, werrors.New(werrors.BadKey, "group key must be 32 bytes", nil)
	}

	var keyArr [GroupKeyLen]byte
	copy(keyArr[:], groupKey)

	var nonce [boxNonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, werrors.New(werrors.IoError, "generating nonce", err)
	}

	sealed := secretbox.Seal(nil, plaintext, &nonce, &keyArr)

	out := make([]byte, 0, boxNonceLen+len(sealed))
	out = append(out, nonce[:]...)
	out = append(out, sealed...)
	return out, nil
}

// DecryptGroup reads the first 24 bytes of ciphertext as the nonce and
// authenticates/decrypts the remainder under groupKey (spec §4.2).
// Returns ErrTooShort (a BadKey error) if ciphertext is under 24 bytes,
// BadKey if groupKey is the wrong length, DecryptAuth on tampering.
func DecryptGroup(ciphertext, groupKey []byte) ([]byte, error) {
	if len(ciphertext) < boxNonceLen {
		return nil, ErrTooShort
	}
	if len(groupKey) != GroupKeyLen {
		return nil, werrors.New(werrors.BadKey, "group key must be 32 bytes", nil)
	}

	var keyArr [GroupKeyLen]byte
	copy(keyArr[:], groupKey)

	var nonce [boxNonceLen]byte
	copy(nonce[:], ciphertext[:boxNonceLen])
	body := ciphertext[boxNonceLen:]

	plaintext, ok := secretbox.Open(nil, body, &nonce, &keyArr)
	if !ok {
		return nil, werrors.New(werrors.DecryptAuth, "group decryption failed", nil)
	}
	return plaintext, nil
}

// ErrTooShort is the BadKey *werrors.Error DecryptGroup returns when a
// group ciphertext is shorter than the 24-byte nonce it must carry.
// Callers distinguish this case by comparing with ==; errors.Is against
// it matches every BadKey error, since werrors compares kinds only.
var ErrTooShort = werrors.New(werrors.BadKey, "ciphertext too short: missing nonce", nil)
