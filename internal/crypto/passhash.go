// Package crypto implements server-side password hashing and verification.
package crypto

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the cost the original deployment was provisioned with.
const bcryptCost = 10

// HashPassword returns a bcrypt hash of password with an embedded per-password salt.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcryptCost)
}

// VerifyPassword verifies password against an expected bcrypt hash in constant time.
func VerifyPassword(password, expected []byte) bool {
	return bcrypt.CompareHashAndPassword(expected, password) == nil
}
