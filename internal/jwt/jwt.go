package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer issues the JWT
const Issuer = "depu-server"

// Audience is the intended JWT audience
const Audience = "depu-client"

// Lifetime is how long a signed JWT remains valid
const Lifetime = 24 * time.Hour

var secret []byte

// SetSecret installs the HMAC signing secret
// this method should only be called once, at startup.
func SetSecret(s string) {
	secret = []byte(s)
}

// Sign will sign a JWT for the user ID
func Sign(userID string) (string, error) {
	if len(secret) == 0 {
		panic("SetSecret() not called")
	}

	now := time.Now()
	token := jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, jwtgo.RegisteredClaims{
		Audience:  jwtgo.ClaimStrings{Audience},
		ID:        uuid.New().String(),
		IssuedAt:  jwtgo.NewNumericDate(now),
		ExpiresAt: jwtgo.NewNumericDate(now.Add(Lifetime)),
		Issuer:    Issuer,
		Subject:   userID,
	})

	return token.SignedString(secret)
}

// ValidUserID will validate a signed JWT and return its user ID
func ValidUserID(signedString string) (string, error) {
	if len(secret) == 0 {
		panic("SetSecret() not called")
	}

	token, err := jwtgo.ParseWithClaims(signedString, &jwtgo.RegisteredClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodHMAC); !ok {
			return nil, errors.New("expected HS256 signing method")
		}

		return secret, nil
	})

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwtgo.RegisteredClaims)
	if !ok {
		return "", fmt.Errorf("expected jwt.RegisteredClaims, got %T", token.Claims)
	}

	if !containsAudience(claims.Audience, Audience) {
		return "", errors.New("invalid audience")
	}

	if claims.Issuer != Issuer {
		return "", errors.New("invalid issuer")
	}

	return claims.Subject, nil
}

func containsAudience(audiences jwtgo.ClaimStrings, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}
