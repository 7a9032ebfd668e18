package lib

import (
	"bengaliboutique_server/structs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseToken(t *testing.T) {
	sub := uuid.New()
	token, err := SignToken(&structs.AuthClaims{Sub: sub, Username: "alice", Email: "alice@example.com", Role: structs.RoleAdmin}, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, sub, claims.Sub)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin())
	assert.NotEqual(t, uuid.Nil, claims.Jti)

	_, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := SignToken(&structs.AuthClaims{Sub: sub}, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestExtractClaims(t *testing.T) {
	sub := uuid.New()
	token, err := SignToken(&structs.AuthClaims{Sub: sub, Role: structs.RoleUser}, "secret", time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/", nil)
	_, err = ExtractClaims(r, "secret")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	claims, err := ExtractClaims(r, "secret")
	require.NoError(t, err)
	assert.Equal(t, sub, claims.Sub)

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	claims, err = ExtractClaims(r, "secret")
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}
