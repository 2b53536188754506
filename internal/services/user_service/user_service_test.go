package user_service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"darkroom/internal/domain/models"
	"darkroom/internal/storage"
	"darkroom/internal/transport/http/dto"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) UserByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	args := m.Called(ctx, identifier)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) ByResetToken(ctx context.Context, token string) (models.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, userID int64, updates map[string]interface{}) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type stubTokenIssuer struct {
	pair    *models.TokenPair
	revoked []int64
}

func (s *stubTokenIssuer) GenerateTokens(_ context.Context, user models.User) (*models.TokenPair, error) {
	if s.pair != nil {
		return s.pair, nil
	}
	return &models.TokenPair{UserID: user.ID, AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *stubTokenIssuer) RevokeAll(_ context.Context, userID int64) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

func mustHash(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	t.Run("stores hashed password with default role", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("SaveUser", ctx, mock.MatchedBy(func(u models.User) bool {
			if u.Role != models.RoleUser {
				return false
			}
			return bcrypt.CompareHashAndPassword(u.Password, []byte("correct horse")) == nil
		})).Return(int64(1), nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		user, err := svc.Register(ctx, dto.UserRegisterRequest{
			Username: "reporter",
			Email:    "reporter@example.com",
			Password: "correct horse",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
			Return(int64(0), storage.ErrUserExists).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		_, err := svc.Register(ctx, dto.UserRegisterRequest{
			Username: "reporter",
			Email:    "reporter@example.com",
			Password: "correct horse",
		})

		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	passHash := mustHash(t, "correct horse")
	baseUser := models.User{
		ID:       1,
		Username: "reporter",
		Email:    "reporter@example.com",
		Password: passHash,
		Role:     models.RoleEditor,
	}

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UserByIdentifier", ctx, "reporter@example.com").Return(baseUser, nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		pair, err := svc.Login(ctx, dto.UserLoginRequest{
			Identifier: "reporter@example.com",
			Password:   "correct horse",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), pair.UserID)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UserByIdentifier", ctx, "reporter@example.com").Return(baseUser, nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		_, err := svc.Login(ctx, dto.UserLoginRequest{
			Identifier: "reporter@example.com",
			Password:   "wrong",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user maps to invalid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UserByIdentifier", ctx, "ghost").Return(models.User{}, storage.ErrUserNotFound).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		_, err := svc.Login(ctx, dto.UserLoginRequest{Identifier: "ghost", Password: "x"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("2fa enabled requires a code", func(t *testing.T) {
		secret := "JBSWY3DPEHPK3PXP"
		user := baseUser
		user.TwoFactorEnabled = true
		user.TwoFactorSecret = &secret

		repo := new(MockUserRepository)
		repo.On("UserByIdentifier", ctx, "reporter@example.com").Return(user, nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		_, err := svc.Login(ctx, dto.UserLoginRequest{
			Identifier: "reporter@example.com",
			Password:   "correct horse",
		})

		assert.ErrorIs(t, err, ErrTOTPRequired)
	})

	t.Run("2fa with valid code succeeds", func(t *testing.T) {
		secret := "JBSWY3DPEHPK3PXP"
		user := baseUser
		user.TwoFactorEnabled = true
		user.TwoFactorSecret = &secret

		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		repo := new(MockUserRepository)
		repo.On("UserByIdentifier", ctx, "reporter@example.com").Return(user, nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		pair, err := svc.Login(ctx, dto.UserLoginRequest{
			Identifier: "reporter@example.com",
			Password:   "correct horse",
			TOTPCode:   code,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("2fa with garbage code fails", func(t *testing.T) {
		secret := "JBSWY3DPEHPK3PXP"
		user := baseUser
		user.TwoFactorEnabled = true
		user.TwoFactorSecret = &secret

		repo := new(MockUserRepository)
		repo.On("UserByIdentifier", ctx, "reporter@example.com").Return(user, nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		_, err := svc.Login(ctx, dto.UserLoginRequest{
			Identifier: "reporter@example.com",
			Password:   "correct horse",
			TOTPCode:   "000000",
		})

		assert.ErrorIs(t, err, ErrInvalidTOTPCode)
	})
}

func TestUserService_TwoFactorVerify(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	secret := "JBSWY3DPEHPK3PXP"
	user := models.User{ID: 1, Email: "reporter@example.com", TwoFactorSecret: &secret}

	t.Run("valid code enables 2fa", func(t *testing.T) {
		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		repo := new(MockUserRepository)
		repo.On("GetByID", ctx, int64(1)).Return(user, nil).Once()
		repo.On("UpdateFields", ctx, int64(1), map[string]interface{}{"two_factor_enabled": true}).
			Return(nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		require.NoError(t, svc.TwoFactorVerify(ctx, 1, code))
		repo.AssertExpectations(t)
	})

	t.Run("invalid code keeps 2fa disabled", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", ctx, int64(1)).Return(user, nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		err := svc.TwoFactorVerify(ctx, 1, "000000")

		assert.ErrorIs(t, err, ErrInvalidTOTPCode)
		repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	t.Run("unknown email is silently accepted", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UserByIdentifier", ctx, "ghost@example.com").
			Return(models.User{}, storage.ErrUserNotFound).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		require.NoError(t, svc.RequestPasswordReset(ctx, "ghost@example.com"))
		repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("known email stores token with expiry", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := models.User{ID: 1, Email: "reporter@example.com"}

		repo.On("UserByIdentifier", ctx, "reporter@example.com").Return(user, nil).Once()
		repo.On("UpdateFields", ctx, int64(1), mock.MatchedBy(func(u map[string]interface{}) bool {
			token, ok := u["reset_password_token"].(string)
			_, hasExpiry := u["reset_password_expires"]
			return ok && len(token) == 64 && hasExpiry
		})).Return(nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		require.NoError(t, svc.RequestPasswordReset(ctx, "reporter@example.com"))
		repo.AssertExpectations(t)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expired := time.Now().UTC().Add(-time.Minute)
		token := "deadbeef"
		user := models.User{ID: 1, ResetPasswordToken: &token, ResetPasswordExpires: &expired}

		repo := new(MockUserRepository)
		repo.On("ByResetToken", ctx, "deadbeef").Return(user, nil).Once()

		svc := NewUserService(log, repo, &stubTokenIssuer{}, nil, "")
		err := svc.ResetPassword(ctx, "deadbeef", "new password 123")

		assert.ErrorIs(t, err, ErrResetTokenExpired)
	})

	t.Run("valid token rewrites password and revokes sessions", func(t *testing.T) {
		expires := time.Now().UTC().Add(30 * time.Minute)
		token := "deadbeef"
		user := models.User{ID: 1, ResetPasswordToken: &token, ResetPasswordExpires: &expires}

		repo := new(MockUserRepository)
		repo.On("ByResetToken", ctx, "deadbeef").Return(user, nil).Once()
		repo.On("UpdateFields", ctx, int64(1), mock.MatchedBy(func(u map[string]interface{}) bool {
			hash, ok := u["password"].([]byte)
			if !ok {
				return false
			}
			if bcrypt.CompareHashAndPassword(hash, []byte("new password 123")) != nil {
				return false
			}
			return u["reset_password_token"] == nil && u["reset_password_expires"] == nil
		})).Return(nil).Once()

		issuer := &stubTokenIssuer{}
		svc := NewUserService(log, repo, issuer, nil, "")
		require.NoError(t, svc.ResetPassword(ctx, "deadbeef", "new password 123"))

		assert.Equal(t, []int64{1}, issuer.revoked)
		repo.AssertExpectations(t)
	})
}
