// Package password derives and checks one-way credential hashes.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash derives a salted bcrypt hash from plaintext. Every call generates
// a fresh salt, so hashing the same plaintext twice yields different
// outputs. The salt is embedded in the returned string.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches a hash produced by Hash.
// No endpoint needs it yet; stored hashes already carry everything a
// future login flow requires.
func Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
