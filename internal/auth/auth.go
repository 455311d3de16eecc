// Package auth verifies bearer tokens issued by the identity provider and
// extracts the caller's role and carrier-membership claims.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/haulbase/haulbase/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Verifier validates tokens against the shared signing secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifyToken validates a token and returns the caller's claims.
func (v *Verifier) VerifyToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	roleStr, ok := claims["custom:role"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	// Admins carry no carrier membership.
	carrierID, _ := claims["custom:carrier_id"].(string)
	email, _ := claims["email"].(string)

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		UserID:    userID,
		Email:     email,
		Role:      models.Role(roleStr),
		CarrierID: carrierID,
		Exp:       int64(exp),
	}, nil
}

// SignToken builds a token carrying the given claims. Used by tests and
// local development; in production the identity provider signs tokens.
func (v *Verifier) SignToken(claims models.Claims, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":               claims.UserID,
		"email":             claims.Email,
		"custom:role":       string(claims.Role),
		"custom:carrier_id": claims.CarrierID,
		"exp":               time.Now().Add(ttl).Unix(),
		"iat":               time.Now().Unix(),
	})
	return token.SignedString(v.secret)
}

// ExtractTokenFromHeader extracts the bearer token from an Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
