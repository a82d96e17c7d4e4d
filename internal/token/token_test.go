package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	tokenString, err := BuildJWTString("secret", "clerk-1", time.Hour)
	require.NoError(t, err)

	userCode, err := GetUserCode("secret", tokenString)
	require.NoError(t, err)
	require.Equal(t, "clerk-1", userCode)

	_, err = GetUserCode("other", tokenString)
	require.Error(t, err)

	expired, err := BuildJWTString("secret", "clerk-1", -time.Hour)
	require.NoError(t, err)
	_, err = GetUserCode("secret", expired)
	require.NoError(t, err, "non-positive ttl means no expiry")

	_, err = BuildJWTString("", "clerk-1", time.Hour)
	require.Error(t, err)

	noUser, err := BuildJWTString("secret", "", 0)
	require.NoError(t, err)
	_, err = GetUserCode("secret", noUser)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = GetUserCode("secret", "garbage")
	require.Error(t, err)
}
