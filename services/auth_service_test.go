package services

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	auth := NewAuthService("code", []byte("secret"), time.Hour, true)
	auth.now = func() time.Time { return now }

	token, expires, err := auth.IssueToken()
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)
	assert.NoError(t, auth.VerifyToken(token))

	other := NewAuthService("code", []byte("different"), time.Hour, true)
	other.now = auth.now
	assert.ErrorIs(t, other.VerifyToken(token), ErrInvalidToken)

	auth.now = func() time.Time { return now.Add(2 * time.Hour) }
	assert.ErrorIs(t, auth.VerifyToken(token), ErrInvalidToken, "expired")

	assert.ErrorIs(t, auth.VerifyToken(""), ErrInvalidToken)
	assert.ErrorIs(t, auth.VerifyToken("not.a.jwt"), ErrInvalidToken)
}

func TestLoginSetsCookie(t *testing.T) {
	api := newTestAPI(t)

	resp, _ := api.do(t, "POST", "/api/admin/auth", map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := api.do(t, "POST", "/api/admin/auth", map[string]any{"code": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid admin code", body["error"])

	resp, _ = api.do(t, "POST", "/api/admin/auth", map[string]any{"code": "letmein"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == AdminCookie {
			token = c.Value
			assert.True(t, c.HttpOnly)
			assert.Equal(t, "/", c.Path)
		}
	}
	require.NotEmpty(t, token)
	assert.NoError(t, api.auth.VerifyToken(token))

	resp, _ = api.do(t, "POST", "/api/admin/logout", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == AdminCookie {
			assert.Empty(t, c.Value)
		}
	}
}

func TestEmptyAdminCodeNeverMatches(t *testing.T) {
	auth := NewAuthService("", []byte("s"), time.Hour, false)
	assert.False(t, auth.codeMatches(""))
	assert.False(t, auth.codeMatches("anything"))
}
