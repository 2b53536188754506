package token_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"darkroom/internal/domain/models"
	libjwt "darkroom/internal/lib/jwt"
	"darkroom/internal/lib/logger/sl"
	"darkroom/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
	ErrTokenNotInStorage  = errors.New("token not found in storage")
)

type TokenService struct {
	log        *slog.Logger
	repo       repository.TokenRepository
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(log *slog.Logger, repo repository.TokenRepository, secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		log:        log,
		repo:       repo,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error) {
	const op = "services.TokenService.GenerateTokens"

	accessToken, err := libjwt.NewToken(user, s.secret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := libjwt.NewToken(user, s.secret, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SaveRefreshToken(ctx, user.ID, refreshToken, s.refreshTTL); err != nil {
		s.log.Error("failed to store refresh token",
			slog.String("op", op),
			slog.Int64("user_id", user.ID),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens rotates a refresh token: the presented token must
// verify, still exist in storage, and is deleted before a new pair is
// issued. A replayed token therefore fails on the storage lookup.
func (s *TokenService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "services.TokenService.RefreshTokens"

	meta, err := s.parse(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.repo.GetRefreshToken(ctx, meta.UserID, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		s.log.Warn("refresh token not in storage, possible replay",
			slog.String("op", op),
			slog.Int64("user_id", meta.UserID),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrTokenNotInStorage)
	}

	if err := s.repo.DeleteRefreshToken(ctx, meta.UserID, refreshToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:    meta.UserID,
		Email: meta.Email,
		Role:  models.Role(meta.Role),
	}

	return s.GenerateTokens(ctx, user)
}

func (s *TokenService) Logout(ctx context.Context, userID int64, refreshToken string) error {
	const op = "services.TokenService.Logout"

	if err := s.repo.DeleteRefreshToken(ctx, userID, refreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *TokenService) RevokeAll(ctx context.Context, userID int64) error {
	const op = "services.TokenService.RevokeAll"

	if err := s.repo.DeleteAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Validate checks an access token's signature and expiry and returns
// its claims.
func (s *TokenService) Validate(tokenStr string) (*models.TokenMeta, error) {
	const op = "services.TokenService.Validate"

	meta, err := s.parse(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return meta, nil
}

func (s *TokenService) parse(tokenStr string) (*models.TokenMeta, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidTokenClaims
	}

	uid, ok := claims["uid"].(float64)
	if !ok {
		return nil, ErrInvalidTokenClaims
	}

	meta := &models.TokenMeta{UserID: int64(uid)}
	if email, ok := claims["email"].(string); ok {
		meta.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		meta.Role = role
	}
	if iat, ok := claims["iat"].(float64); ok {
		meta.IssuedAt = int64(iat)
	}
	if exp, ok := claims["exp"].(float64); ok {
		meta.ExpiresAt = int64(exp)
	}

	return meta, nil
}
