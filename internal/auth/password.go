package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CheckPassword compares a login attempt with the stored erp_user password.
// Stored bcrypt hashes are verified with bcrypt; anything else is the legacy
// plaintext column and is compared in constant time.
func CheckPassword(stored, given string) bool {
	if stored == "" || given == "" {
		return false
	}
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// HashPassword returns a bcrypt hash suitable for erp_user.password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isBcrypt(s string) bool {
	return len(s) == 60 && strings.HasPrefix(s, "$2")
}
