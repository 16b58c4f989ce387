// Package cryptokernel implements whisper's Crypto Kernel (spec §4.2):
// sealed-box anonymous-sender encryption for direct messages and
// authenticated symmetric encryption for groups.
package cryptokernel

import (
	"crypto/ecdh"
	"crypto/rand"

	"golang.org/x/crypto/nacl/box"

	"github.com/sudokatie/whisper/internal/werrors"
)

const (
	x25519KeyLen = 32
	boxNonceLen  = 24
)

// SealDirect encrypts plaintext to recipientPub using anonymous-sender,
// sealed-box-style public-key encryption: a fresh ephemeral X25519
// keypair is generated per call, its public half is prepended to the
// output, and the sender's own identity never appears in the
// ciphertext (spec §4.2). Two calls with the same plaintext and key
// produce different ciphertexts because the ephemeral key and nonce
// are both freshly random.
func SealDirect(plaintext []byte, recipientPub *ecdh.PublicKey) ([]byte, error) {
	ephPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, werrors.New(werrors.IoError, "generating ephemeral key", err)
	}

	var recipientArr, ephPrivArr [x25519KeyLen]byte
	if err := fixedCopy(recipientArr[:], recipientPub.Bytes()); err != nil {
		return nil, werrors.New(werrors.BadKey, "recipient public key has wrong length", err)
	}
	if err := fixedCopy(ephPrivArr[:], ephPriv.Bytes()); err != nil {
		return nil, werrors.New(werrors.IoError, "ephemeral private key has wrong length", err)
	}

	var nonce [boxNonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, werrors.New(werrors.IoError, "generating nonce", err)
	}

	sealed := box.Seal(nil, plaintext, &nonce, &recipientArr, &ephPrivArr)

	out := make([]byte, 0, x25519KeyLen+boxNonceLen+len(sealed))
	out = append(out, ephPriv.PublicKey().Bytes()...)
	out = append(out, nonce[:]...)
	out = append(out, sealed...)
	return out, nil
}

// OpenDirect decrypts a SealDirect payload using the recipient's own
// X25519 private key. It returns DecryptAuth on any tampering or wrong
// key, and BadKey if the input is too short to contain an ephemeral
// public key and nonce.
func OpenDirect(ciphertext []byte, recipientPriv *ecdh.PrivateKey) ([]byte, error) {
	if len(ciphertext) < x25519KeyLen+boxNonceLen {
		return nil, werrors.New(werrors.BadKey, "sealed box ciphertext is too short", nil)
	}

	var ephPubArr, privArr [x25519KeyLen]byte
	if err := fixedCopy(ephPubArr[:], ciphertext[:x25519KeyLen]); err != nil {
		return nil, werrors.New(werrors.BadKey, "malformed ephemeral public key", err)
	}
	if err := fixedCopy(privArr[:], recipientPriv.Bytes()); err != nil {
		return nil, werrors.New(werrors.BadKey, "recipient private key has wrong length", err)
	}

	var nonce [boxNonceLen]byte
	copy(nonce[:], ciphertext[x25519KeyLen:x25519KeyLen+boxNonceLen])
	body := ciphertext[x25519KeyLen+boxNonceLen:]

	plaintext, ok := box.Open(nil, body, &nonce, &ephPubArr, &privArr)
	if !ok {
		return nil, werrors.New(werrors.DecryptAuth, "sealed box authentication failed", nil)
	}
	return plaintext, nil
}

func fixedCopy(dst, src []byte) error {
	if len(src) != len(dst) {
		return werrors.New(werrors.BadKey, "unexpected key length", nil)
	}
	copy(dst, src)
	return nil
}
