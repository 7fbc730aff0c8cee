// internal/app/system/auth/tokens.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors surfaced to the middleware and the auth feature.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenManager issues and verifies the signed access tokens the API
// accepts as bearer credentials. Tokens carry the user id, issue time,
// and expiry; validity requires signature correctness and now < expiry.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager builds a TokenManager from the configured signing
// secret and access-token lifetime.
func NewTokenManager(secret string, expiry time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	return &TokenManager{secret: []byte(secret), expiry: expiry}, nil
}

// Expiry returns the configured access-token lifetime.
func (m *TokenManager) Expiry() time.Duration { return m.expiry }

// Issue signs an access token for the given user id.
func (m *TokenManager) Issue(userID string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(m.expiry)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify parses a token and returns the user id it was issued for.
func (m *TokenManager) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
