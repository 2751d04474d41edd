package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, expiresAt, err := GenerateToken("secret", 42, "manager", 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.UserID)
	require.Equal(t, "manager", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateToken("secret", 1, "member", 1)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseToken("secret", "not-a-token")
	require.Error(t, err)
}
