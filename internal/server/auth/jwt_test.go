package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	c := NewTokenCodec("super-secret", 0)

	tok, err := c.Issue("user-123")
	require.NoError(t, err)

	sub, err := c.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestIssue_Claims(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewTokenCodec("k", DefaultValidity, WithClock(fixedClock(now)))

	tok, err := c.Issue("u1")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.Subject)
	assert.True(t, claims.IssuedAt.Time.Equal(now))
	assert.True(t, claims.ExpiresAt.Time.Equal(now.Add(24*time.Hour)))
}

func TestVerify_ExpiresAfter24h(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	c := NewTokenCodec("secret", 0, WithClock(func() time.Time { return clock }))

	tok, err := c.Issue("u1")
	require.NoError(t, err)

	clock = issued.Add(23*time.Hour + 59*time.Minute)
	_, err = c.Verify(tok)
	require.NoError(t, err)

	clock = issued.Add(24*time.Hour + time.Second)
	_, err = c.Verify(tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenCodec("right-secret", 0).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenCodec("wrong-secret", 0).Verify(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_Rejects(t *testing.T) {
	t.Parallel()

	c := NewTokenCodec("k", 0)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noneTok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	hs512Tok, err := hs512.SignedString([]byte("k"))
	require.NoError(t, err)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noSubTok, err := noSub.SignedString([]byte("k"))
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"})
	noExpTok, err := noExp.SignedString([]byte("k"))
	require.NoError(t, err)

	valid, err := c.Issue("u1")
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.jwt"},
		{"alg none", noneTok},
		{"other hmac", hs512Tok},
		{"no subject", noSubTok},
		{"no expiry", noExpTok},
		{"tampered payload", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Verify(tt.token)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestMissingSecret(t *testing.T) {
	t.Parallel()

	c := NewTokenCodec("", time.Hour)

	_, err := c.Issue("u1")
	require.ErrorIs(t, err, common.ErrMissingSecret)

	_, err = c.Verify("anything")
	require.ErrorIs(t, err, common.ErrMissingSecret)
}
