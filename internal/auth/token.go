package auth

import (
	"errors"
	"fmt"
	"time"

	"carmarket/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "carmarket-api"
	tokenAudience = "carmarket-client"
	tokenTTL      = 7 * 24 * time.Hour
)

// Identity is the explicit caller handle carried by every protected request.
type Identity struct {
	UserID string
	Name   string
}

// Tokens issues and verifies HS256 API tokens.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a token issuer for secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for user.
func (t *Tokens) Issue(user *models.User) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := t.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"iss":  tokenIssuer,
		"aud":  tokenAudience,
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates signature, expiry, issuer and audience and returns the identity.
func (t *Tokens) Parse(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, models.NewUnauthorizedError("Invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, models.NewUnauthorizedError("Invalid subject claim")
	}
	name, _ := claims["name"].(string)
	return Identity{UserID: sub, Name: name}, nil
}
