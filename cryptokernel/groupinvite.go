package cryptokernel

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/sudokatie/whisper/internal/werrors"
)

// groupInviteInfo is the HKDF context string binding a wrapped key to
// its purpose, so the same ECDH secret can never be reused as a
// wrapping key for anything else.
const groupInviteInfo = "whisper-group-invite-wrap-v1"

// SealGroupKey wraps a group's symmetric key for a single recipient
// for transport inside a GROUP_INVITE frame (spec §4.2). An ephemeral
// X25519 keypair establishes a shared secret with recipientPub via
// ECDH; HKDF-SHA256 derives a one-time wrapping key from that secret
// rather than using the raw ECDH output directly, and the group key is
// sealed under it with secretbox. The ephemeral public key and nonce
// are prepended to the output.
func SealGroupKey(groupKey []byte, recipientPub *ecdh.PublicKey) ([]byte, error) {
	ephPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, werrors.New(werrors.IoError, "generating ephemeral key", err)
	}
	shared, err := ephPriv.ECDH(recipientPub)
	if err != nil {
		return nil, werrors.New(werrors.BadKey, "computing shared secret", err)
	}

	wrapKey, err := deriveWrapKey(shared)
	if err != nil {
		return nil, err
	}

	var nonce [boxNonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, werrors.New(werrors.IoError, "generating nonce", err)
	}
	sealed := secretbox.Seal(nil, groupKey, &nonce, &wrapKey)

	ephPub := ephPriv.PublicKey().Bytes()
	out := make([]byte, 0, len(ephPub)+boxNonceLen+len(sealed))
	out = append(out, ephPub...)
	out = append(out, nonce[:]...)
	out = append(out, sealed...)
	return out, nil
}

// OpenGroupKey reverses SealGroupKey using the recipient's X25519
// private key.
func OpenGroupKey(wrapped []byte, recipientPriv *ecdh.PrivateKey) ([]byte, error) {
	if len(wrapped) < x25519KeyLen+boxNonceLen {
		return nil, werrors.New(werrors.BadKey, "wrapped group key is too short", nil)
	}

	ephPub, err := ecdh.X25519().NewPublicKey(wrapped[:x25519KeyLen])
	if err != nil {
		return nil, werrors.New(werrors.BadKey, "malformed ephemeral public key", err)
	}
	shared, err := recipientPriv.ECDH(ephPub)
	if err != nil {
		return nil, werrors.New(werrors.BadKey, "computing shared secret", err)
	}
	wrapKey, err := deriveWrapKey(shared)
	if err != nil {
		return nil, err
	}

	var nonce [boxNonceLen]byte
	copy(nonce[:], wrapped[x25519KeyLen:x25519KeyLen+boxNonceLen])
	body := wrapped[x25519KeyLen+boxNonceLen:]

	plaintext, ok := secretbox.Open(nil, body, &nonce, &wrapKey)
	if !ok {
		return nil, werrors.New(werrors.DecryptAuth, "group key unwrap failed", nil)
	}
	return plaintext, nil
}

func deriveWrapKey(shared []byte) ([32]byte, error) {
	var key [32]byte
	kdf := hkdf.New(sha256.New, shared, nil, []byte(groupInviteInfo))
	if _, err := io.ReadFull(kdf, key[:]); err != nil {
		return key, werrors.New(werrors.IoError, "deriving group invite wrap key", err)
	}
	return key, nil
}
