package identity

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

// EncryptionKeyPair is the X25519 keypair derived from a signing keypair
// (spec §4.1). It is bound for life to the signing key it was derived
// from: deriving twice from the same signing key yields the same pair.
type EncryptionKeyPair struct {
	Public  *ecdh.PublicKey
	Private *ecdh.PrivateKey
}

// DeriveEncryptionKeys derives the X25519 encryption keypair from the
// signing keypair's seed. From the 32-byte seed s, h = SHA-512(s);
// clamp the low 32 bytes per the X25519 scalar convention
// (h[0] &= 248; h[31] &= 127; h[31] |= 64); the encryption public key
// is scalarmult_base(scalar).
func DeriveEncryptionKeys(k *KeyPair) (*EncryptionKeyPair, error) {
	scalar, err := scalarFromSeed(k.Seed())
	if err != nil {
		return nil, err
	}

	priv, err := ecdh.X25519().NewPrivateKey(scalar)
	if err != nil {
		return nil, fmt.Errorf("deriving X25519 private key: %w", err)
	}
	return &EncryptionKeyPair{Public: priv.PublicKey(), Private: priv}, nil
}

func scalarFromSeed(seed []byte) ([]byte, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("bad signing seed length: %d", len(seed))
	}
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64

	scalar := make([]byte, 32)
	copy(scalar, h[:32])
	return scalar, nil
}

// ConvertSigningPublicToEncryption maps an Ed25519 public signing key to
// its X25519 public encryption key via the canonical birational map from
// the Edwards y-coordinate to the Montgomery u-coordinate. This MUST
// produce the same public key DeriveEncryptionKeys derives from the
// corresponding secret key (spec §4.2, §8 contract 3, §9 open question 1).
// The hash-based fallback some implementations use is NOT the inverse of
// this map and breaks interoperability; it is deliberately not offered.
func ConvertSigningPublicToEncryption(pub ed25519.PublicKey) (*ecdh.PublicKey, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("bad signing public key length: %d", len(pub))
	}
	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("invalid Ed25519 public key: %w", err)
	}
	return ecdh.X25519().NewPublicKey(p.BytesMontgomery())
}
