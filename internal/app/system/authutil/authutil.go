// internal/app/system/authutil/authutil.go

// Package authutil holds password hashing and validation helpers shared by
// the login flow and user administration.
package authutil

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the minimum password requirements for new
// accounts and password changes.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(password) != password {
		return fmt.Errorf("password must not start or end with whitespace")
	}
	return nil
}

// PasswordRules describes the password requirements for display.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters, with no leading or trailing spaces.", minPasswordLength)
}
