package service

import (
	"context"
	"testing"
	"time"

	"github.com/Mtank10/career-counselling-chat-app/internal/apperror"
	"github.com/Mtank10/career-counselling-chat-app/internal/config"
	"github.com/Mtank10/career-counselling-chat-app/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*fakeStore, IAuthService) {
	t.Helper()
	store := newFakeStore()
	svc := NewAuthService(
		&fakeFactory{store: store},
		config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		nopLogger{},
	)
	return store, svc
}

func TestRegisterHashesPassword(t *testing.T) {
	store, svc := newAuthFixture(t)

	res, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "jamie@example.com",
		FullName: "Jamie Doe",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "jamie@example.com", res.Email)

	user := store.users[res.Id]
	require.NotNil(t, user)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "secret123", *user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("secret123")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture(t)

	req := &dto.RegisterRequest{Email: "jamie@example.com", FullName: "Jamie Doe", Password: "secret123"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}

func TestLoginIssuesTokenWithUserIdClaim(t *testing.T) {
	_, svc := newAuthFixture(t)

	reg, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "jamie@example.com",
		FullName: "Jamie Doe",
		Password: "secret123",
	})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "jamie@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotNil(t, res.User)
	assert.Equal(t, reg.Id, res.User.Id)

	token, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, reg.Id.String(), claims["user_id"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "jamie@example.com",
		FullName: "Jamie Doe",
		Password: "secret123",
	})
	require.NoError(t, err)

	for _, req := range []*dto.LoginRequest{
		{Email: "jamie@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "secret123"},
	} {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, 401, appErr.Code)
		assert.Equal(t, "invalid email or password", appErr.Message)
	}
}

func TestGetProfile(t *testing.T) {
	_, svc := newAuthFixture(t)

	reg, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "jamie@example.com",
		FullName: "Jamie Doe",
		Password: "secret123",
	})
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background(), reg.Id)
	require.NoError(t, err)
	assert.Equal(t, "Jamie Doe", profile.FullName)
}
