package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)

	token, expiresAt, err := tm.GenerateToken("user-42", domain.RoleAgent)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.SubjectID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 15)
	other := NewTokenManager("secret-b", 15)

	token, _, err := tm.GenerateToken("user-42", domain.RoleCustomer)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)
	_, err := tm.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2!", 4)
	require.NoError(t, err)
	require.NotEqual(t, "hunter2!", hash)

	require.NoError(t, ComparePassword(hash, "hunter2!"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
