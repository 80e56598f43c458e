// Package auth provides password hashing and JWT issuance/verification for
// the account API.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly 250ms on
// current server hardware — negligible at login, expensive for brute force.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct rather than free functions so the cost can be lowered in
// tests; hashing at cost 12 hundreds of times per test run adds real minutes.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a caller-chosen
// cost. Use bcrypt.MinCost (4) in tests. Never use this in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password with bcrypt. The output embeds the salt
// and cost, so it can be stored as-is and verified without extra columns.
//
// Hashing an empty password is a programmer error: the registration and
// change-password workflows validate presence before calling this.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("auth: refusing to hash an empty password")
	}
	if len(plaintext) > 72 {
		// bcrypt silently truncates beyond 72 bytes; reject explicitly.
		return "", errors.New("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash.
// The comparison is constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
