package media_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"darkroom/internal/domain/models"
	"darkroom/internal/lib/logger/sl"
	"darkroom/internal/repository"
	storage "darkroom/internal/storage/filestorage"
	storerr "darkroom/internal/storage"
	"darkroom/internal/transport/http/dto"

	"github.com/google/uuid"
)

var ErrMediaNotFound = errors.New("media not found")

// allowedExtensions mirrors what the upload endpoint accepts; anything
// else is rejected before the file touches disk.
var allowedExtensions = map[string]models.MediaType{
	".jpg":  models.MediaTypeImage,
	".jpeg": models.MediaTypeImage,
	".png":  models.MediaTypeImage,
	".gif":  models.MediaTypeImage,
	".webp": models.MediaTypeImage,
	".pdf":  models.MediaTypeDocument,
}

type MediaService struct {
	log         *slog.Logger
	repo        repository.MediaRepository
	fileStorage storage.FileStorage
	maxSize     int64
}

func NewMediaService(log *slog.Logger, repo repository.MediaRepository, fileStorage storage.FileStorage, maxSize int64) *MediaService {
	if maxSize == 0 {
		maxSize = 10 << 20
	}
	return &MediaService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
		maxSize:     maxSize,
	}
}

func (s *MediaService) UploadMedia(ctx context.Context, input dto.MediaUploadInput) (*models.Media, error) {
	const op = "services.MediaService.UploadMedia"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("uploader_id", input.UploaderID),
		slog.String("filename", input.File.Filename),
	)

	log.Info("upload media")

	if input.File.Size > s.maxSize {
		return nil, fmt.Errorf("%s: %w", op, storerr.ErrFileTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(input.File.Filename))
	mediaType, ok := allowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storerr.ErrInvalidFileType)
	}
	if input.MediaType != "" {
		mediaType = models.MediaType(input.MediaType)
	}

	subPath := filepath.Join("uploads", strconv.FormatInt(input.UploaderID, 10))
	filePath, fileSize, err := s.fileStorage.Save(ctx, input.File, subPath)
	if err != nil {
		log.Error("failed to save file", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	media := &models.Media{
		ID:               uuid.New(),
		UploaderID:       input.UploaderID,
		CreatedAt:        time.Now().UTC(),
		MediaType:        mediaType,
		OriginalFilename: input.File.Filename,
		StoragePath:      filePath,
		FileSize:         fileSize,
		MimeType:         input.File.Header.Get("Content-Type"),
	}

	if err := media.Validate(); err != nil {
		_ = s.fileStorage.Delete(ctx, filePath)
		log.Error("media validation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.CreateMedia(ctx, media)
	if err != nil {
		_ = s.fileStorage.Delete(ctx, filePath)
		log.Error("failed to save media to database", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created.URL = s.publicURL(created.StoragePath)

	log.Info("media uploaded",
		slog.String("media_id", created.ID.String()),
		slog.Int64("size", created.FileSize),
	)

	return created, nil
}

func (s *MediaService) GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	const op = "services.MediaService.GetByID"

	media, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storerr.ErrFileNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrMediaNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	media.URL = s.publicURL(media.StoragePath)
	return media, nil
}

func (s *MediaService) publicURL(storagePath string) string {
	base := strings.TrimSuffix(s.fileStorage.BaseURL(), "/")
	return base + "/" + filepath.ToSlash(storagePath)
}
