package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"go-storefront/clock"
)

// ErrInvalidToken is returned for tokens that fail to parse, verify, or are expired
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// TokenIssuer signs and verifies HS256 session tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenIssuer creates a TokenIssuer. Expiry is measured against clk.
func NewTokenIssuer(secret []byte, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, clock: clk}
}

// GenerateJWT generates a JWT token for a user
func (ti *TokenIssuer) GenerateJWT(userID, email string) (string, error) {
	now := ti.clock.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ti.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseJWT verifies the signature and expiry of tokenString and returns its claims
func (ti *TokenIssuer) ParseJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := &jwt.Parser{SkipClaimsValidation: true}

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// Claims are checked against the injected clock rather than jwt.TimeFunc.
	if !claims.VerifyExpiresAt(ti.clock.Now().Unix(), true) {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
