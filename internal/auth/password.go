package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EncodePassword hashes a plaintext password with bcrypt's default cost.
func EncodePassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// MatchesPassword reports whether plain matches the bcrypt hash.
func MatchesPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// GenerateOpaqueToken returns a random identifier suitable for one-off links.
func GenerateOpaqueToken() string {
	return uuid.NewString()
}
