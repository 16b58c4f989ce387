package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/crypto/argon2"

	"github.com/sudokatie/whisper/internal/werrors"
)

// saltFileName is the per-vault salt file beside the store (spec §6).
const saltFileName = ".whisper.salt"

const (
	bucketContacts     = "contacts"
	bucketContactAlias = "contacts_by_alias"
	bucketGroups       = "groups"
	bucketGroupName    = "groups_by_name"
	bucketMessages     = "messages"
	bucketPending      = "pending"
)

var allBuckets = []string{
	bucketContacts, bucketContactAlias,
	bucketGroups, bucketGroupName,
	bucketMessages, bucketPending,
}

// Store is the open handle to whisper's encrypted, bbolt-backed vault.
type Store struct {
	db  *bbolt.DB
	key []byte // AES-256 key derived from passphrase + salt
}

// Open opens (creating if absent) the encrypted store under dataDir,
// deriving the at-rest key from passphrase and the per-vault salt file
// (spec §4.3, §6). An empty passphrase is rejected at open time.
func Open(dataDir string, passphrase string) (*Store, error) {
	if passphrase == "" {
		return nil, werrors.New(werrors.InvalidInput, "passphrase must not be empty", nil)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, werrors.New(werrors.IoError, "creating data directory", err)
	}

	salt, err := loadOrCreateSalt(filepath.Join(dataDir, saltFileName))
	if err != nil {
		return nil, err
	}

	key := argon2.IDKey([]byte(passphrase), salt, 2, 64*1024, 1, 32)

	db, err := bbolt.Open(filepath.Join(dataDir, "whisper.db"), 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, werrors.New(werrors.IoError, "opening store database", err)
	}

	s := &Store{db: db, key: key}
	if err := s.ensureBuckets(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.verifyPassphrase(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return werrors.New(werrors.IoError, "creating bucket "+name, err)
			}
		}
		return nil
	})
}

// verifyPassphrase checks the passphrase against a canary value written
// on first open, returning WrongPassphrase on mismatch (mirrors
// original_source's verify_passphrase helper).
func (s *Store) verifyPassphrase() error {
	const canaryKey = "__canary__"
	const canaryPlaintext = "whisper"

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketContacts))
		existing := b.Get([]byte(canaryKey))
		if existing == nil {
			sealed, err := s.seal([]byte(canaryPlaintext))
			if err != nil {
				return err
			}
			return b.Put([]byte(canaryKey), sealed)
		}
		plain, err := s.open(existing)
		if err != nil || string(plain) != canaryPlaintext {
			return werrors.New(werrors.WrongPassphrase, "incorrect passphrase", err)
		}
		return nil
	})
}

func loadOrCreateSalt(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		salt, decodeErr := base64.StdEncoding.DecodeString(string(data))
		if decodeErr != nil {
			return nil, werrors.New(werrors.IoError, "decoding salt file", decodeErr)
		}
		return salt, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, werrors.New(werrors.IoError, "reading salt file", err)
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, werrors.New(werrors.IoError, "generating salt", err)
	}
	encoded := base64.StdEncoding.EncodeToString(salt)
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return nil, werrors.New(werrors.IoError, "writing salt file", err)
	}
	return salt, nil
}

// IsFirstRun reports whether no per-vault salt file exists yet at dataDir.
func IsFirstRun(dataDir string) bool {
	_, err := os.Stat(filepath.Join(dataDir, saltFileName))
	return errors.Is(err, os.ErrNotExist)
}

// seal encrypts plaintext at rest with AES-256-GCM under the store key.
func (s *Store) seal(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, werrors.New(werrors.IoError, "constructing cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, werrors.New(werrors.IoError, "constructing GCM", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, werrors.New(werrors.IoError, "generating nonce", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts a value sealed by seal.
func (s *Store) open(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, werrors.New(werrors.IoError, "constructing cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, werrors.New(werrors.IoError, "constructing GCM", err)
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, werrors.New(werrors.WrongPassphrase, "ciphertext too short", nil)
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, werrors.New(werrors.WrongPassphrase, "decryption failed", err)
	}
	return plain, nil
}

func (s *Store) putJSON(tx *bbolt.Tx, bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return werrors.New(werrors.IoError, "marshaling record", err)
	}
	sealed, err := s.seal(data)
	if err != nil {
		return err
	}
	b := tx.Bucket([]byte(bucket))
	return b.Put([]byte(key), sealed)
}

func (s *Store) getJSON(tx *bbolt.Tx, bucket, key string, v interface{}) (bool, error) {
	b := tx.Bucket([]byte(bucket))
	raw := b.Get([]byte(key))
	if raw == nil {
		return false, nil
	}
	plain, err := s.open(raw)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(plain, v); err != nil {
		return false, werrors.New(werrors.IoError, "unmarshaling record", err)
	}
	return true, nil
}

func internalErr(format string, err error) error {
	return werrors.New(werrors.IoError, fmt.Sprintf(format), err)
}

func unmarshalJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return werrors.New(werrors.IoError, "unmarshaling record", err)
	}
	return nil
}
