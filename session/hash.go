/*
hash.go - Password hashing

PURPOSE:
  PBKDF2-SHA256 password hashing with per-user random salts. The domain
  layer consumes this through the muster.PasswordHasher interface and
  never sees the algorithm or its parameters.

PARAMETERS:
  100000 iterations, 16-byte salt, 32-byte derived key. Stored rows carry
  the salt next to the key, so the parameters can only be raised for NEW
  passwords; existing rows keep verifying with what they were created with
  as long as the constants stay put.
*/
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 100_000
	saltLength     = 16
	keyLength      = 32
)

// Hasher derives and verifies password keys. The zero value is ready to use.
type Hasher struct{}

// NewSalt returns a fresh random salt.
func (Hasher) NewSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Hash derives the storage key for a password and salt.
func (Hasher) Hash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, hashIterations, keyLength, sha256.New)
}

// Verify reports whether password matches the stored salt/key pair,
// in constant time.
func (h Hasher) Verify(password string, salt, key []byte) bool {
	derived := h.Hash(password, salt)
	return subtle.ConstantTimeCompare(derived, key) == 1
}
