// Package auth mints and verifies the HS256 session tokens handed to
// clients in the LOGIN response.
package auth

import (
	"time"

	"github.com/examhub/examhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the authenticated identity.
type Claims struct {
	jwt.RegisteredClaims
	UserName string
	Role     string
}

func GenerateToken(userName, role string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserName: userName,
		Role:     role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetUserFromToken(tokenString string, secretKey []byte) (string, string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", "", err
	}

	if !token.Valid {
		return "", "", common.ErrInvalidToken
	}

	return claims.UserName, claims.Role, nil
}
