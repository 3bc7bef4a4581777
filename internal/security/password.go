package security

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the bcrypt work factor used when none is configured.
const DefaultBcryptCost = 12

// HashPassword hashes a plaintext password using bcrypt with the given cost.
// A cost outside bcrypt's valid range falls back to DefaultBcryptCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
