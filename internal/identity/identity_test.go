package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/model"
)

func TestContextResolver(t *testing.T) {
	var r Resolver = ContextResolver{}

	user, ok := r.Resolve(context.Background())
	assert.False(t, ok)
	assert.Equal(t, model.Anonymous, user)

	user, ok = r.Resolve(WithUser(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, model.UserID("u1"), user)

	_, ok = r.Resolve(WithUser(context.Background(), model.Anonymous))
	assert.False(t, ok)
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("")
	require.Error(t, err)
}

func TestValidateAccessToken(t *testing.T) {
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	token, err := manager.IssueAccessToken("u1", time.Minute)
	require.NoError(t, err)

	user, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, model.UserID("u1"), user)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	token, err := manager.IssueAccessToken("u1", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)
	other, err := NewJWTManager("other-secret")
	require.NoError(t, err)

	foreign, err := other.IssueAccessToken("u1", time.Minute)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenClaims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Minute).Unix()},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &AccessTokenClaims{UserID: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"missing user": noUser,
		"alg none":     unsigned,
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := manager.ValidateAccessToken(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
