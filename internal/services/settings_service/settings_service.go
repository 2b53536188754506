package settings_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"darkroom/internal/domain/models"
	"darkroom/internal/lib/logger/sl"
	"darkroom/internal/repository"
	"darkroom/internal/storage"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrUnknownKey      = errors.New("unknown setting key")
	ErrInvalidValue    = errors.New("setting value is not valid json")
)

// knownKeys is the closed set of settings the API exposes. Writes to
// anything else are rejected so typos never create orphan rows.
var knownKeys = map[string]struct{}{
	models.SettingBreakingNews: {},
	models.SettingDonation:     {},
}

type SettingsService struct {
	log  *slog.Logger
	repo repository.SettingRepository
}

func NewSettingsService(log *slog.Logger, repo repository.SettingRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

func (s *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	const op = "services.SettingsService.Get"

	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrSettingNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSettingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return setting, nil
}

func (s *SettingsService) Update(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	const op = "services.SettingsService.Update"

	log := s.log.With(slog.String("op", op), slog.String("key", key))

	if _, ok := knownKeys[key]; !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrUnknownKey)
	}
	if !json.Valid(value) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidValue)
	}

	setting, err := s.repo.Upsert(ctx, key, value)
	if err != nil {
		log.Error("failed to upsert setting", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("setting updated")

	return setting, nil
}
