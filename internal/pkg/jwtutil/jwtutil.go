// Package jwtutil verifies identity tokens minted by the external identity
// provider. The core trusts a verified token unconditionally as the source
// of user identity; there is no local credential store.
package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid identity token")

// IdentityClaims is the contract with the identity provider: a stable
// subject (the token identifier) plus display name and email.
type IdentityClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIdentifier returns the stable identifier the user row is keyed by.
func (c *IdentityClaims) TokenIdentifier() string {
	return c.Subject
}

func ParseIdentityToken(secret, tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateIdentityToken mints a token the way the identity provider would.
// Used by local tooling and tests.
func GenerateIdentityToken(secret string, expire time.Duration, tokenIdentifier, name, email string) (string, error) {
	now := time.Now()
	claims := &IdentityClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tokenIdentifier,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign identity token failed: %w", err)
	}
	return signed, nil
}
