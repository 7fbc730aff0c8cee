// internal/app/system/auth/password.go
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash stored on the user document.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordMatches compares a candidate password against a stored hash.
func PasswordMatches(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
