package media_service

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"darkroom/internal/domain/models"
	storerr "darkroom/internal/storage"
	filestorage "darkroom/internal/storage/filestorage"
	"darkroom/internal/transport/http/dto"

	"github.com/brianvoe/gofakeit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	args := m.Called(ctx, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

// fileHeader builds a real multipart.FileHeader the way an HTTP upload
// would produce one.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func newStorage(t *testing.T) *filestorage.LocalFileStorage {
	t.Helper()
	dir := t.TempDir()
	fs, err := filestorage.NewLocalFileStorage(dir, "/uploads")
	require.NoError(t, err)
	return fs
}

func TestMediaService_UploadMedia(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	gofakeit.Seed(11)

	t.Run("image upload lands on disk and in the repository", func(t *testing.T) {
		fs := newStorage(t)
		repo := new(MockMediaRepository)

		content := []byte(gofakeit.Paragraph(2, 4, 10, " "))
		header := fileHeader(t, "press-photo.jpg", content)

		repo.On("CreateMedia", ctx, mock.MatchedBy(func(m *models.Media) bool {
			return m.MediaType == models.MediaTypeImage &&
				m.UploaderID == 7 &&
				m.OriginalFilename == "press-photo.jpg" &&
				m.FileSize == int64(len(content))
		})).Return(&models.Media{
			ID:               uuid.New(),
			UploaderID:       7,
			MediaType:        models.MediaTypeImage,
			OriginalFilename: "press-photo.jpg",
			StoragePath:      filepath.Join("uploads", "7", "stored.jpg"),
			FileSize:         int64(len(content)),
		}, nil).Once()

		svc := NewMediaService(log, repo, fs, 0)
		media, err := svc.UploadMedia(ctx, dto.MediaUploadInput{
			File:       header,
			UploaderID: 7,
		})

		require.NoError(t, err)
		assert.Equal(t, "/uploads/uploads/7/stored.jpg", media.URL)
		repo.AssertExpectations(t)
	})

	t.Run("oversized file rejected before touching disk", func(t *testing.T) {
		fs := newStorage(t)
		repo := new(MockMediaRepository)

		header := fileHeader(t, "huge.jpg", bytes.Repeat([]byte("x"), 512))

		svc := NewMediaService(log, repo, fs, 100)
		_, err := svc.UploadMedia(ctx, dto.MediaUploadInput{File: header, UploaderID: 7})

		assert.ErrorIs(t, err, storerr.ErrFileTooLarge)
		repo.AssertNotCalled(t, "CreateMedia", mock.Anything, mock.Anything)
	})

	t.Run("disallowed extension rejected", func(t *testing.T) {
		fs := newStorage(t)
		repo := new(MockMediaRepository)

		header := fileHeader(t, "payload.exe", []byte("MZ"))

		svc := NewMediaService(log, repo, fs, 0)
		_, err := svc.UploadMedia(ctx, dto.MediaUploadInput{File: header, UploaderID: 7})

		assert.ErrorIs(t, err, storerr.ErrInvalidFileType)
	})

	t.Run("failed repository write cleans the file up", func(t *testing.T) {
		dir := t.TempDir()
		fs, err := filestorage.NewLocalFileStorage(dir, "/uploads")
		require.NoError(t, err)
		repo := new(MockMediaRepository)

		header := fileHeader(t, "photo.png", []byte(gofakeit.HipsterSentence(8)))

		repo.On("CreateMedia", ctx, mock.Anything).
			Return(nil, assert.AnError).Once()

		svc := NewMediaService(log, repo, fs, 0)
		_, err = svc.UploadMedia(ctx, dto.MediaUploadInput{File: header, UploaderID: 7})
		require.Error(t, err)

		// Nothing should remain under the uploader's directory.
		var leftover int
		_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err == nil && info != nil && !info.IsDir() {
				leftover++
			}
			return nil
		})
		assert.Zero(t, leftover)
	})
}
