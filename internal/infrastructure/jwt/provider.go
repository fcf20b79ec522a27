package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-identity-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens with a process-wide secret.
type Provider struct {
	secret []byte
	expiry time.Duration
}

// NewProvider rejects an empty secret so a misconfigured process fails at
// startup instead of signing tokens with a guessable key.
func NewProvider(secret string, expiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if expiry <= 0 {
		return nil, errors.New("jwt expiry must be positive")
	}
	return &Provider{secret: []byte(secret), expiry: expiry}, nil
}

func (p *Provider) Sign(userID int64, name string, phone *string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if phone != nil {
		claims.Phone = *phone
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Malformed, badly signed and expired
// tokens all collapse to the same error so callers cannot distinguish them.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	return claims, nil
}
