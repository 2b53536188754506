package dto

import (
	"mime/multipart"

	"darkroom/internal/domain/models"
)

type MediaUploadInput struct {
	File       *multipart.FileHeader
	UploaderID int64
	MediaType  string
}

type MediaResponse struct {
	ID               string `json:"id"`
	URL              string `json:"url"`
	MediaType        string `json:"media_type"`
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	CreatedAt        string `json:"created_at"`
}

func NewMediaResponse(m *models.Media) MediaResponse {
	return MediaResponse{
		ID:               m.ID.String(),
		URL:              m.URL,
		MediaType:        string(m.MediaType),
		OriginalFilename: m.OriginalFilename,
		FileSize:         m.FileSize,
		CreatedAt:        m.CreatedAt.Format(timeLayout),
	}
}
