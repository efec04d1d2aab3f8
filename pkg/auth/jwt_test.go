package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := manager.GenerateToken(userID, "ada.bello@dentanet.edu", "student")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada.bello@dentanet.edu", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "dentanet", claims.Issuer)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).GenerateToken(uuid.New(), "a@b.co", "student")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTExpiredToken(t *testing.T) {
	token, err := NewJWTManager("test-secret", -time.Minute).GenerateToken(uuid.New(), "a@b.co", "student")
	require.NoError(t, err)

	_, err = NewJWTManager("test-secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsUnsignedToken(t *testing.T) {
	claims := &Claims{UserID: uuid.New(), Email: "a@b.co", Role: "admin"}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("test-secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTGarbageInput(t *testing.T) {
	_, err := NewJWTManager("test-secret", time.Hour).ValidateToken("not-a-token")
	assert.Error(t, err)
}
