package dto

import (
	"encoding/json"

	"darkroom/internal/domain/models"
)

type UpdateSettingRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

type SettingResponse struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}

func NewSettingResponse(s *models.Setting) SettingResponse {
	return SettingResponse{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt.Format(timeLayout),
	}
}
