// SPDX-License-Identifier: GPL-3.0-only

package tokens

import (
	"errors"
	"time"

	"saraha-server/commons"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure: malformed
// token, signature mismatch, wrong key, or missing claim. A token is
// never partially trusted.
var ErrInvalidToken = errors.New("invalid token")

// TokenService signs and verifies the two bearer token classes. Session
// tokens authenticate users, activation tokens confirm email addresses;
// each class has its own signing key so one can be rotated without
// invalidating the other.
type TokenService struct {
	SessionKey    string
	ActivationKey string
}

func NewTokenService() *TokenService {
	return &TokenService{
		SessionKey:    commons.GetEnv("SESSION_JWT_SECRET", "default_very_secret_key"),
		ActivationKey: commons.GetEnv("ACTIVATION_JWT_SECRET", "default_activation_secret_key"),
	}
}

// IssueSessionToken signs a session token for the given user. No exp
// claim is set: tokens stay valid until the signing key changes. Known
// weak point carried over from the original contract, kept deliberately.
func (ts *TokenService) IssueSessionToken(userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
	})
	return token.SignedString([]byte(ts.SessionKey))
}

// IssueActivationToken signs an activation token binding an email
// address, using the separate activation key. No exp claim, same as
// session tokens.
func (ts *TokenService) IssueActivationToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"iat":   time.Now().Unix(),
	})
	return token.SignedString([]byte(ts.ActivationKey))
}

func (ts *TokenService) VerifySessionToken(tokenString string) (uint, error) {
	claims, err := ts.parse(tokenString, ts.SessionKey)
	if err != nil {
		return 0, err
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(sub), nil
}

func (ts *TokenService) VerifyActivationToken(tokenString string) (string, error) {
	claims, err := ts.parse(tokenString, ts.ActivationKey)
	if err != nil {
		return "", err
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}

func (ts *TokenService) parse(tokenString, key string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
