package testhelpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// SignHS256 signs claims with secret, failing the test on error.
func SignHS256(t testing.TB, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// UserToken returns a token carrying userID in the "id" claim, the shape the
// web client's login endpoint issues.
func UserToken(t testing.TB, secret, userID string, ttl time.Duration) string {
	t.Helper()
	return SignHS256(t, secret, jwt.MapClaims{
		"id":  userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	})
}
