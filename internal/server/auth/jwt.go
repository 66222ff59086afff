// Package auth issues and verifies signed bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is the lifetime of an access token.
const DefaultValidity = 24 * time.Hour

// TokenCodec signs access tokens with HS256 and checks them back.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type Option func(*TokenCodec)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(secret string, validity time.Duration, opts ...Option) *TokenCodec {
	if validity <= 0 {
		validity = DefaultValidity
	}
	c := &TokenCodec{
		secret:   []byte(secret),
		validity: validity,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Issue returns a token whose subject is subjectID.
func (c *TokenCodec) Issue(subjectID string) (string, error) {
	if len(c.secret) == 0 {
		return "", common.ErrMissingSecret
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
// An expired token yields common.ErrTokenExpired, every other rejection
// common.ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	if len(c.secret) == 0 {
		return "", common.ErrMissingSecret
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
