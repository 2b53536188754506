package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeDocument MediaType = "document"
)

// Media is an uploaded file (featured images, inline article images).
type Media struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UploaderID       int64     `json:"uploader_id" db:"uploader_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	MediaType        MediaType `json:"media_type" db:"media_type"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	StoragePath      string    `json:"storage_path" db:"storage_path"`
	URL              string    `json:"url" db:"-"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	MimeType         string    `json:"mime_type,omitempty" db:"mime_type"`
}

// Validate checks the mandatory media fields before persisting.
func (m *Media) Validate() error {
	var errs []string

	if m.UploaderID == 0 {
		errs = append(errs, "uploader ID is required")
	}
	if m.OriginalFilename == "" {
		errs = append(errs, "original filename is required")
	}
	if len(m.OriginalFilename) > 255 {
		errs = append(errs, "original filename must be 255 characters or less")
	}
	if m.StoragePath == "" {
		errs = append(errs, "storage path is required")
	}
	if m.FileSize <= 0 {
		errs = append(errs, "file size must be positive")
	}

	switch m.MediaType {
	case MediaTypeImage, MediaTypeDocument:
	default:
		errs = append(errs, fmt.Sprintf("invalid media type '%s'", m.MediaType))
	}

	if len(errs) > 0 {
		return &MediaValidationError{Errors: errs}
	}

	return nil
}

type MediaValidationError struct {
	Errors []string
}

func (e *MediaValidationError) Error() string {
	return fmt.Sprintf("media validation failed: %s", strings.Join(e.Errors, "; "))
}

func IsMediaValidationError(err error) bool {
	_, ok := err.(*MediaValidationError)
	return ok
}
