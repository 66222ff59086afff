package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", time.Second)
}

func TestRegister(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]string{"email": "a@b.com", "password": "secret1"}, in)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.com","createdAt":"2026-01-02T03:04:05Z"}`))
	})

	u, err := c.Register(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, 2026, u.CreatedAt.Year())
}

func TestLoginAndMe(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_, _ = w.Write([]byte(`{"token":"tkn"}`))
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer tkn" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"invalid token"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.com"}`))
		}
	})

	tok, err := c.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tkn", tok)

	u, err := c.Me(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	_, err = c.Me(context.Background(), "other")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid token", apiErr.Message)
}

func TestForgotAndReset(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/forgot-password":
			_, _ = w.Write([]byte(`{"message":"sent","code":"123456"}`))
		case "/auth/reset-password":
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in["code"] != "123456" || in["newPassword"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message":"invalid or expired code"}`))
				return
			}
			_, _ = w.Write([]byte(`{"message":"password updated"}`))
		}
	})

	msg, code, err := c.ForgotPassword(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "sent", msg)
	assert.Equal(t, "123456", code)

	msg, err = c.ResetPassword(context.Background(), code, "brand-new")
	require.NoError(t, err)
	assert.Equal(t, "password updated", msg)

	_, err = c.ResetPassword(context.Background(), "000000", "brand-new")
	require.EqualError(t, err, "400: invalid or expired code")
}

func TestValidationErrorFields(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid input","errors":{"password":"min=6"}}`))
	})

	_, err := c.Register(context.Background(), "a@b.com", "123")
	require.EqualError(t, err, "400: invalid input: password (min=6)")
}

func TestAPIError_FieldOrderIsStable(t *testing.T) {
	e := &APIError{Status: 400, Message: "invalid input", Fields: map[string]string{
		"password": "min=6",
		"email":    "email",
		"code":     "len=6",
	}}
	for i := 0; i < 20; i++ {
		require.Equal(t, "400: invalid input: code (len=6), email (email), password (min=6)", e.Error())
	}
}

func TestNonJSONError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := c.Login(context.Background(), "a@b.com", "secret1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Login(context.Background(), "a@b.com", "secret1")
	require.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
}
