package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost stays at the library default; raising it invalidates no stored
// hashes but slows login on small instances.
const bcryptCost = bcrypt.DefaultCost

// HashPassword produces a bcrypt hash for storage. bcrypt truncates input at
// 72 bytes, which is treated as an error rather than silently accepted.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", errors.New("password longer than 72 bytes")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether the plaintext password matches the
// stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
