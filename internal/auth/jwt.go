package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT claims issued by the platform identity provider.
type Claims struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT verification configuration.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Verifier validates bearer tokens and produces verified identities.
type Verifier struct {
	cfg *JWTConfig
}

// NewVerifier creates a Verifier for the given configuration.
func NewVerifier(cfg *JWTConfig) *Verifier {
	return &Verifier{cfg: cfg}
}

// Verify parses and validates a JWT and returns the caller's Identity.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.cfg.Secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token claims")
	}
	if claims.UserID == "" {
		return Identity{}, fmt.Errorf("token carries no user id")
	}

	if v.cfg.Issuer != "" && claims.Issuer != v.cfg.Issuer {
		return Identity{}, fmt.Errorf("invalid issuer")
	}

	if v.cfg.Audience != "" {
		validAudience := false
		for _, aud := range claims.Audience {
			if aud == v.cfg.Audience {
				validAudience = true
				break
			}
		}
		if !validAudience {
			return Identity{}, fmt.Errorf("invalid audience")
		}
	}

	return Identity{uid: claims.UserID, displayName: claims.DisplayName}, nil
}

// GenerateToken creates a JWT for the given user. The identity provider owns
// token issuance in production; this is used by tests and local tooling.
func GenerateToken(cfg *JWTConfig, userID, displayName string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      userID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}
