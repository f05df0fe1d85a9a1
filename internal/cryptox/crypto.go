// Package cryptox holds the one-way password hashing used for local
// credentials.
package cryptox

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/verixa/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// NoPasswordSentinel is stored in place of a hash for accounts created
// through OAuth federation. It is not a valid bcrypt hash, so CheckPassword
// can never succeed against it.
const NoPasswordSentinel = "null"

// DefaultCost is the bcrypt work factor used when the configuration does not
// override it.
const DefaultCost = 10

// HashPassword returns the bcrypt hash of password using the given cost.
// A cost outside bcrypt's accepted range falls back to DefaultCost.
//
// Passwords longer than 72 bytes are rejected with common.ErrorValidation
// instead of being silently truncated.
func HashPassword(password []byte, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is longer than 72 bytes", common.ErrorValidation)
		}
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. The comparison is
// constant-time. The OAuth sentinel, an empty hash or any malformed value
// reports false.
func CheckPassword(hash string, password []byte) bool {
	if hash == "" || hash == NoPasswordSentinel {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), password) == nil
}
