package authenticator_test

import (
	"testing"
	"time"

	"github.com/mediashare/backend/pkg/authenticator"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWT(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(time.Minute, "abc")
	require.Nil(t, err)

	var msg string
	info, err := engine.VerifyInfo(token, &msg)
	require.NoError(t, err)
	require.Equal(t, "abc", msg)
	require.NotEmpty(t, info.ID)
	require.WithinDuration(t, time.Now().Add(time.Minute), info.ExpiresAt, 2*time.Second)
}

func TestJWTExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(-time.Minute, "abc")
	require.Nil(t, err)

	var msg string
	err = engine.Verify(token, &msg)
	require.ErrorIs(t, err, authenticator.ErrTokenExpired)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := authenticator.NewTokenEngine("secret").Generate(time.Minute, "abc")
	require.NoError(t, err)

	var msg string
	err = authenticator.NewTokenEngine("another").Verify(token, &msg)
	require.ErrorIs(t, err, authenticator.ErrTokenInvalid)
}

func TestPassword(t *testing.T) {
	hashed, err := authenticator.HashPassword("p@ssw0rd", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "p@ssw0rd", hashed)

	require.NoError(t, authenticator.ComparePassword(hashed, "p@ssw0rd"))
	require.Error(t, authenticator.ComparePassword(hashed, "wrong"))
}
