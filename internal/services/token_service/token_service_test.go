package token_service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"darkroom/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) SaveRefreshToken(ctx context.Context, userID int64, token string, exp time.Duration) error {
	args := m.Called(ctx, userID, token, exp)
	return args.Error(0)
}

func (m *MockTokenRepository) GetRefreshToken(ctx context.Context, userID int64, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) DeleteRefreshToken(ctx context.Context, userID int64, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteAllUserTokens(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

const testSecret = "unit-test-secret"

func testUser() models.User {
	return models.User{
		ID:    42,
		Email: "reporter@example.com",
		Role:  models.RoleEditor,
	}
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTokenRepository)
	repo.On("SaveRefreshToken", ctx, int64(42), mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Once()

	svc := NewTokenService(slog.Default(), repo, testSecret, time.Minute, time.Hour)

	pair, err := svc.GenerateTokens(ctx, testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(42), pair.UserID)

	meta, err := svc.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), meta.UserID)
	assert.Equal(t, "reporter@example.com", meta.Email)
	assert.Equal(t, string(models.RoleEditor), meta.Role)
	repo.AssertExpectations(t)
}

func TestTokenService_Validate_WrongSecret(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTokenRepository)
	repo.On("SaveRefreshToken", ctx, int64(42), mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Once()

	issuer := NewTokenService(slog.Default(), repo, "other-secret", time.Minute, time.Hour)
	pair, err := issuer.GenerateTokens(ctx, testUser())
	require.NoError(t, err)

	verifier := NewTokenService(slog.Default(), new(MockTokenRepository), testSecret, time.Minute, time.Hour)
	_, err = verifier.Validate(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RefreshTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("rotation deletes the presented token", func(t *testing.T) {
		repo := new(MockTokenRepository)
		repo.On("SaveRefreshToken", ctx, int64(42), mock.AnythingOfType("string"), mock.Anything).
			Return(nil).Twice()

		svc := NewTokenService(slog.Default(), repo, testSecret, time.Minute, time.Hour)
		pair, err := svc.GenerateTokens(ctx, testUser())
		require.NoError(t, err)

		repo.On("GetRefreshToken", ctx, int64(42), pair.RefreshToken).Return(true, nil).Once()
		repo.On("DeleteRefreshToken", ctx, int64(42), pair.RefreshToken).Return(nil).Once()

		fresh, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, int64(42), fresh.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("replayed token is rejected", func(t *testing.T) {
		repo := new(MockTokenRepository)
		repo.On("SaveRefreshToken", ctx, int64(42), mock.AnythingOfType("string"), mock.Anything).
			Return(nil).Once()

		svc := NewTokenService(slog.Default(), repo, testSecret, time.Minute, time.Hour)
		pair, err := svc.GenerateTokens(ctx, testUser())
		require.NoError(t, err)

		repo.On("GetRefreshToken", ctx, int64(42), pair.RefreshToken).Return(false, nil).Once()

		_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenNotInStorage)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewTokenService(slog.Default(), new(MockTokenRepository), testSecret, time.Minute, time.Hour)
		_, err := svc.RefreshTokens(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
