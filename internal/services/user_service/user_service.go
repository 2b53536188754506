package user_service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"darkroom/internal/domain/models"
	"darkroom/internal/lib/logger/sl"
	"darkroom/internal/repository"
	"darkroom/internal/storage"
	"darkroom/internal/transport/http/dto"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrTOTPRequired       = errors.New("totp code required")
	ErrInvalidTOTPCode    = errors.New("invalid totp code")
	ErrResetTokenExpired  = errors.New("reset token invalid or expired")
)

const resetTokenTTL = time.Hour

// TokenIssuer produces an access/refresh pair for a logged-in user.
type TokenIssuer interface {
	GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error)
	RevokeAll(ctx context.Context, userID int64) error
}

// ResetMailer delivers password reset tokens. A nil mailer means the
// token is only written to the log, which is how local setups run.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

type UserService struct {
	log     *slog.Logger
	repo    repository.UserRepository
	tokens  TokenIssuer
	mailer  ResetMailer
	totpIss string
}

func NewUserService(log *slog.Logger, repo repository.UserRepository, tokens TokenIssuer, mailer ResetMailer, totpIssuer string) *UserService {
	if totpIssuer == "" {
		totpIssuer = "darkroom"
	}
	return &UserService{
		log:     log,
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		totpIss: totpIssuer,
	}
}

func (s *UserService) Register(ctx context.Context, req dto.UserRegisterRequest) (models.User, error) {
	const op = "services.UserService.Register"

	log := s.log.With(slog.String("op", op), slog.String("email", req.Email))

	passHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  passHash,
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.repo.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		log.Error("failed to save user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	log.Info("user registered", slog.Int64("user_id", id))

	return user, nil
}

// Login verifies the password and, when two-factor is enabled for the
// account, the TOTP code as well. A correct password without a code
// yields ErrTOTPRequired so the client can prompt for one.
func (s *UserService) Login(ctx context.Context, req dto.UserLoginRequest) (*models.TokenPair, error) {
	const op = "services.UserService.Login"

	log := s.log.With(slog.String("op", op), slog.String("identifier", req.Identifier))

	log.Info("attempting to login user")

	user, err := s.repo.UserByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(req.Password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if user.TwoFactorEnabled {
		if req.TOTPCode == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrTOTPRequired)
		}
		if user.TwoFactorSecret == nil || !totp.Validate(req.TOTPCode, *user.TwoFactorSecret) {
			log.Warn("invalid totp code")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidTOTPCode)
		}
	}

	pair, err := s.tokens.GenerateTokens(ctx, user)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("user_id", user.ID))

	return pair, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (models.User, error) {
	const op = "services.UserService.GetByID"

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	const op = "services.UserService.List"

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *UserService) Update(ctx context.Context, userID int64, req dto.UpdateUserRequest) (models.User, error) {
	const op = "services.UserService.Update"

	updates := map[string]any{}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateFields(ctx, userID, updates); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
			}
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s.GetByID(ctx, userID)
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	const op = "services.UserService.Delete"

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.tokens != nil {
		if err := s.tokens.RevokeAll(ctx, userID); err != nil {
			s.log.Warn("failed to revoke tokens for deleted user",
				slog.String("op", op),
				slog.Int64("user_id", userID),
				sl.Err(err),
			)
		}
	}

	s.log.Info("user deleted", slog.String("op", op), slog.Int64("user_id", userID))
	return nil
}

// TwoFactorSetup generates a fresh TOTP secret for the user and stores
// it disabled. The account only switches to enforced 2FA after
// TwoFactorVerify confirms the user scanned the secret.
func (s *UserService) TwoFactorSetup(ctx context.Context, userID int64) (*dto.TwoFactorSetupResponse, error) {
	const op = "services.UserService.TwoFactorSetup"

	log := s.log.With(slog.String("op", op), slog.Int64("user_id", userID))

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.totpIss,
		AccountName: user.Email,
	})
	if err != nil {
		log.Error("failed to generate totp key", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := map[string]any{
		"two_factor_secret":  key.Secret(),
		"two_factor_enabled": false,
	}
	if err := s.repo.UpdateFields(ctx, userID, updates); err != nil {
		log.Error("failed to store totp secret", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("totp secret issued")

	return &dto.TwoFactorSetupResponse{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
	}, nil
}

func (s *UserService) TwoFactorVerify(ctx context.Context, userID int64, code string) error {
	const op = "services.UserService.TwoFactorVerify"

	log := s.log.With(slog.String("op", op), slog.Int64("user_id", userID))

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.TwoFactorSecret == nil || !totp.Validate(code, *user.TwoFactorSecret) {
		log.Warn("totp verification failed")
		return fmt.Errorf("%s: %w", op, ErrInvalidTOTPCode)
	}

	if err := s.repo.UpdateFields(ctx, userID, map[string]any{"two_factor_enabled": true}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("two-factor enabled")
	return nil
}

func (s *UserService) TwoFactorDisable(ctx context.Context, userID int64) error {
	const op = "services.UserService.TwoFactorDisable"

	updates := map[string]any{
		"two_factor_enabled": false,
		"two_factor_secret":  nil,
	}
	if err := s.repo.UpdateFields(ctx, userID, updates); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("two-factor disabled", slog.String("op", op), slog.Int64("user_id", userID))
	return nil
}

// RequestPasswordReset issues a one-hour reset token. An unknown email
// is not an error: the response is identical either way so the
// endpoint cannot be used to enumerate accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "services.UserService.RequestPasswordReset"

	log := s.log.With(slog.String("op", op), slog.String("email", email))

	user, err := s.repo.UserByIdentifier(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := randomToken()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	expires := time.Now().UTC().Add(resetTokenTTL)

	updates := map[string]any{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	}
	if err := s.repo.UpdateFields(ctx, user.ID, updates); err != nil {
		log.Error("failed to store reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
			log.Error("failed to send reset mail", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	} else {
		log.Info("reset token issued without mailer", slog.String("token", token))
	}

	log.Info("password reset requested", slog.Int64("user_id", user.ID))
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "services.UserService.ResetPassword"

	log := s.log.With(slog.String("op", op))

	user, err := s.repo.ByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrResetTokenExpired)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.ResetPasswordExpires == nil || user.ResetPasswordExpires.Before(time.Now().UTC()) {
		return fmt.Errorf("%s: %w", op, ErrResetTokenExpired)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	updates := map[string]any{
		"password":               passHash,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
	}
	if err := s.repo.UpdateFields(ctx, user.ID, updates); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.tokens != nil {
		if err := s.tokens.RevokeAll(ctx, user.ID); err != nil {
			log.Warn("failed to revoke sessions after reset", sl.Err(err))
		}
	}

	log.Info("password reset completed", slog.Int64("user_id", user.ID))
	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
