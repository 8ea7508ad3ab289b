package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestJWTGuard_Authenticate(t *testing.T) {
	guard := NewJWTGuard(testSecret)

	token, err := Issue(testSecret, Identity{UserID: "host-1", Email: "host@example.com", Role: RoleHost}, time.Hour)
	require.NoError(t, err)

	id, err := guard.Authenticate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "host-1", id.UserID)
	assert.Equal(t, "host@example.com", id.Email)
	assert.Equal(t, RoleHost, id.Role)

	_, err = guard.Authenticate("bearer " + token)
	assert.NoError(t, err, "scheme is case-insensitive")
}

func TestJWTGuard_Rejects(t *testing.T) {
	guard := NewJWTGuard(testSecret)

	valid, err := Issue(testSecret, Identity{UserID: "u1"}, time.Hour)
	require.NoError(t, err)
	expired, err := Issue(testSecret, Identity{UserID: "u1"}, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := Issue("other-secret", Identity{UserID: "u1"}, time.Hour)
	require.NoError(t, err)
	noSubject, err := Issue(testSecret, Identity{}, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"empty header", "", ErrMissingCredential},
		{"bearer without token", "Bearer   ", ErrMissingCredential},
		{"bare bearer", "bearer", ErrMissingCredential},
		{"token without scheme", valid, ErrInvalidCredential},
		{"basic scheme", "Basic " + valid, ErrInvalidCredential},
		{"garbage token", "Bearer not.a.jwt", ErrInvalidCredential},
		{"expired", "Bearer " + expired, ErrInvalidCredential},
		{"wrong key", "Bearer " + wrongKey, ErrInvalidCredential},
		{"no subject", "Bearer " + noSubject, ErrInvalidCredential},
		{"alg none", "Bearer " + unsigned, ErrInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := guard.Authenticate(tt.header)
			assert.Nil(t, id)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestJWTGuard_NoSecret(t *testing.T) {
	token, err := Issue(testSecret, Identity{UserID: "u1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTGuard("").Authenticate("Bearer " + token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
