package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when no cost is configured.
// 12 keeps a single hash in the tens-of-milliseconds range on current
// hardware, which is deliberate: the hash is the only CPU-expensive step
// in the login path.
const DefaultCost = 12

var ErrMismatch = errors.New("cryptox: password does not match")

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// A cost below bcrypt.MinCost falls back to DefaultCost so a zero-value
// config never produces a weak hash.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("cryptox: password is empty")
	}
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// bcrypt's comparison runs in time independent of where the mismatch occurs.
func VerifyPassword(password, encodedHash string) error {
	if encodedHash == "" {
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
