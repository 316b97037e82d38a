// Package cryptox provides one-way password hashing and verification for
// the identity service.
package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/picloop/identity/internal/common"
)

// PasswordHashCost is the fixed bcrypt work factor for new digests.
const PasswordHashCost = 10

// HashPassword produces a salted bcrypt digest of the plaintext. The salt
// is generated internally, so equal passwords hash to different digests.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorHashing, err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether the plaintext matches the stored digest.
// A mismatch returns (false, nil); only a malformed digest is an error.
// bcrypt's comparison is constant-time over the derived key.
func VerifyPassword(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", common.ErrorHashing, err)
}
