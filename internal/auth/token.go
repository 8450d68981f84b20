package auth

import (
	"errors"
	"fmt"
	"time"

	"event-registry/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier resolves a bearer token to the caller address it was issued for.
type TokenVerifier interface {
	Verify(token string) (model.Address, error)
}

// TokenIssuer signs tokens whose subject is the caller address.
type TokenIssuer interface {
	Issue(addr model.Address, expiry time.Duration) (string, error)
}

type jwtClaims struct {
	jwt.RegisteredClaims
}

type JWTAuthenticator struct {
	secret []byte
}

var (
	_ TokenIssuer   = (*JWTAuthenticator)(nil)
	_ TokenVerifier = (*JWTAuthenticator)(nil)
)

// NewJWTAuthenticator signs and verifies HS256 tokens with secret.
func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) Issue(addr model.Address, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   addr.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (a *JWTAuthenticator) Verify(tokenString string) (model.Address, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	addr, err := model.ParseAddress(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	return addr, nil
}
