package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ErrNotAdmin is returned for a valid token that lacks the admin claim
var ErrNotAdmin = errors.New("token does not carry the admin claim")

// AdminClaims identifies an operator allowed to use reconciliation and reporting endpoints
type AdminClaims struct {
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.StandardClaims
}

// GenerateAdminToken signs an admin token valid for ttl
func GenerateAdminToken(secret, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := AdminClaims{
		Email: email,
		Admin: true,
		StandardClaims: jwt.StandardClaims{
			Subject:   email,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
			Issuer:    AppName,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateAdminToken parses tokenString and requires the admin claim
func ValidateAdminToken(secret, tokenString string) (*AdminClaims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.Admin {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
