// Package token выпускает и проверяет JWT сессии покупателя.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Session struct {
	UserCode string
	Role     string
	// Токен бэкенда, с которым витрина ходит в REST API от имени пользователя
	BackendToken string
}

type claims struct {
	jwt.RegisteredClaims
	UserCode     string `json:"uid"`
	Role         string `json:"role"`
	BackendToken string `json:"bt,omitempty"`
}

var ErrInvalidToken = errors.New("invalid token")

func BuildJWTString(secret []byte, ttl time.Duration, session Session) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserCode:     session.UserCode,
		Role:         session.Role,
		BackendToken: session.BackendToken,
	})
	return token.SignedString(secret)
}

func Parse(secret []byte, tokenString string) (Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || c.UserCode == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{
		UserCode:     c.UserCode,
		Role:         c.Role,
		BackendToken: c.BackendToken,
	}, nil
}
