// Package identity implements whisper's Identity Vault (spec §4.1): it
// generates, persists, and unlocks a long-lived Ed25519 signing keypair
// and derives the X25519 encryption keypair bound to it for life.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/sudokatie/whisper/internal/werrors"
)

const (
	saltLen  = 32
	nonceLen = 24

	// argon2 parameters, matching libsodium's OPSLIMIT_INTERACTIVE /
	// MEMLIMIT_INTERACTIVE presets referenced by spec §6.
	argonTime    = 2
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 1
	argonKeyLen  = 32
)

// KeyPair is a long-lived Ed25519 signing keypair.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generate creates a fresh signing keypair.
func Generate() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating signing keypair: %w", err)
	}
	return &KeyPair{Public: pub, Private: priv}, nil
}

// Seed returns the 32-byte seed backing the private key.
func (k *KeyPair) Seed() []byte {
	return k.Private.Seed()
}

// NodeID returns the stable node identifier: a deterministic hash of
// the public signing key, base58-encoded for display (spec §3, glossary).
func (k *KeyPair) NodeID() string {
	return NodeIDFromPublicKey(k.Public)
}

// NodeIDFromPublicKey derives the same stable node identifier KeyPair.NodeID
// produces, from a public key learned out-of-band (e.g. `import-contact`).
func NodeIDFromPublicKey(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return base58.Encode(sum[:])
}

// ExportPublic returns the base64 encoding of the canonical public-key
// bytes (spec §4.1, §6).
func (k *KeyPair) ExportPublic() string {
	return base64.StdEncoding.EncodeToString(k.Public)
}

// ImportPublic decodes a base64-encoded public signing key (spec §4.1).
func ImportPublic(s string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, werrors.New(werrors.InvalidInput, "malformed public key encoding", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, werrors.New(werrors.BadKey, "public key has wrong length", nil)
	}
	return ed25519.PublicKey(raw), nil
}

// deriveKey runs Argon2id over passphrase+salt with whisper's fixed
// parameters (spec §6).
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Create generates a new signing keypair and writes the identity file
// at path with the bit-exact layout required by spec §6:
// salt(32) || nonce(24) || ciphertext.
func Create(path string, passphrase string) (*KeyPair, error) {
	if passphrase == "" {
		return nil, werrors.New(werrors.InvalidInput, "passphrase must not be empty", nil)
	}
	if _, err := os.Stat(path); err == nil {
		return nil, werrors.New(werrors.AlreadyExists, "identity file already exists", nil)
	}

	kp, err := Generate()
	if err != nil {
		return nil, err
	}

	if err := save(path, passphrase, kp); err != nil {
		return nil, err
	}
	return kp, nil
}

func save(path string, passphrase string, kp *KeyPair) error {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	key := deriveKey(passphrase, salt)
	var keyArr [32]byte
	copy(keyArr[:], key)

	sealed := secretbox.Seal(nil, kp.Seed(), &nonce, &keyArr)

	out := make([]byte, 0, saltLen+nonceLen+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	out = append(out, sealed...)

	if err := os.WriteFile(path, out, 0600); err != nil {
		return werrors.New(werrors.IoError, "writing identity file", err)
	}
	return nil
}

// Unlock decrypts the identity file at path with passphrase and returns
// the signing keypair, or WrongPassphrase on authentication failure.
func Unlock(path string, passphrase string) (*KeyPair, error) {
	if passphrase == "" {
		return nil, werrors.New(werrors.InvalidInput, "passphrase must not be empty", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, werrors.New(werrors.NotInitialized, "identity file not found", err)
		}
		return nil, werrors.New(werrors.IoError, "reading identity file", err)
	}
	if len(data) < saltLen+nonceLen+1 {
		return nil, werrors.New(werrors.BadKey, "identity file is truncated", nil)
	}

	salt := data[:saltLen]
	var nonce [nonceLen]byte
	copy(nonce[:], data[saltLen:saltLen+nonceLen])
	ciphertext := data[saltLen+nonceLen:]

	key := deriveKey(passphrase, salt)
	var keyArr [32]byte
	copy(keyArr[:], key)

	seed, ok := secretbox.Open(nil, ciphertext, &nonce, &keyArr)
	if !ok {
		return nil, werrors.New(werrors.WrongPassphrase, "incorrect passphrase", nil)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &KeyPair{Public: priv.Public().(ed25519.PublicKey), Private: priv}, nil
}

// Exists reports whether an identity file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
