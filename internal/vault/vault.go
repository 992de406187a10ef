// Package vault encrypts and persists per-service login credentials,
// independent of the relational store.
//
// The encryption key is derived from stable device identity, so a
// credential file copied to another machine is intentionally unreadable
// there. Decryption failures are treated as "no saved credentials", never
// as errors: a corrupted or foreign file behaves like a missing one.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// credExt is the stable file extension for encrypted credential blobs.
	credExt = ".cred"

	saltSize   = 16
	keySize    = 32 // AES-256
	kdfRounds  = 10000
)

// Credentials is a decrypted (username, password) pair.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Vault stores one encrypted credential file per logical key under a
// directory.
type Vault struct {
	dir  string
	keys KeySource
	log  logrus.FieldLogger
}

// New creates a vault rooted at dir. The key source supplies the
// device-bound passphrase; pass a StaticKeySource in headless or test
// environments.
func New(dir string, keys KeySource, log logrus.FieldLogger) *Vault {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Vault{dir: dir, keys: keys, log: log}
}

// Save serializes and encrypts the credential pair and writes it
// atomically to the per-key file, overwriting any previous entry.
func (v *Vault) Save(key, username, password string) error {
	plaintext, err := json.Marshal(Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	blob, err := v.encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt credentials: %w", err)
	}

	if err := os.MkdirAll(v.dir, 0o700); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a truncated
	// credential file behind.
	path := v.filePath(key)
	tmp, err := os.CreateTemp(v.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Get reads and decrypts the credentials saved under key. The second
// return value is false when no usable credentials exist: the file is
// missing, corrupted, or was written on a different device. Failures are
// logged, never returned.
func (v *Vault) Get(key string) (Credentials, bool) {
	blob, err := os.ReadFile(v.filePath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			v.log.WithError(err).WithField("key", key).Warn("credential file unreadable")
		}
		return Credentials{}, false
	}

	plaintext, err := v.decrypt(blob)
	if err != nil {
		v.log.WithError(err).WithField("key", key).
			Warn("credential decryption failed, treating as no saved credentials")
		return Credentials{}, false
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		v.log.WithError(err).WithField("key", key).Warn("credential payload malformed")
		return Credentials{}, false
	}
	if creds.Username == "" {
		return Credentials{}, false
	}
	return creds, true
}

// Delete removes the credentials saved under key. A missing file is not an
// error.
func (v *Vault) Delete(key string) error {
	err := os.Remove(v.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

func (v *Vault) filePath(key string) string {
	return filepath.Join(v.dir, key+credExt)
}

// encrypt seals the plaintext with AES-256-GCM. The random per-blob salt
// feeding the key derivation is stored alongside the nonce:
// salt || nonce || ciphertext.
func (v *Vault) encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	gcm, err := v.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	blob := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	return gcm.Seal(blob, nonce, plaintext, nil), nil
}

func (v *Vault) decrypt(blob []byte) ([]byte, error) {
	if len(blob) < saltSize {
		return nil, fmt.Errorf("blob too short")
	}
	salt, rest := blob[:saltSize], blob[saltSize:]

	gcm, err := v.aead(salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("blob too short")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (v *Vault) aead(salt []byte) (cipher.AEAD, error) {
	passphrase, err := v.keys.Passphrase()
	if err != nil {
		return nil, fmt.Errorf("derive passphrase: %w", err)
	}

	derived := pbkdf2.Key([]byte(passphrase), salt, kdfRounds, keySize, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
