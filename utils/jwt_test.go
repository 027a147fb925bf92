package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", "user@example.com",
		UserMetadata{FullName: "Test User", AvatarURL: "https://img.example.com/u.png"}, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "Test User", claims.UserMetadata.FullName)
	assert.Equal(t, "https://img.example.com/u.png", claims.UserMetadata.AvatarURL)
	require.NotNil(t, claims.ExpiresAt)
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateToken(testSecret, "user-1", "user@example.com", UserMetadata{}, time.Hour)
	require.NoError(t, err)

	expired, err := GenerateToken(testSecret, "user-1", "user@example.com", UserMetadata{}, -time.Minute)
	require.NoError(t, err)

	noSubject, err := GenerateToken(testSecret, "", "user@example.com", UserMetadata{}, time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other-secret", valid},
		{"expired", testSecret, expired},
		{"missing subject", testSecret, noSubject},
		{"unsigned", testSecret, none},
		{"garbage", testSecret, "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			assert.Error(t, err)
		})
	}
}
