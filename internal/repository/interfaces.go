package repository

import (
	"context"
	"encoding/json"
	"time"

	"darkroom/internal/domain/models"

	"github.com/google/uuid"
)

// PostListFilter narrows a post listing. Zero values mean "no filter";
// Limit falls back to a default in the repository.
type PostListFilter struct {
	Status       models.PostStatus
	CategorySlug string
	PostType     models.PostType
	Limit        int
	Offset       int
}

type PostRepository interface {
	SlugExists(ctx context.Context, candidate string, excludeID int64) (bool, error)
	Save(ctx context.Context, post models.Post) (int64, error)
	UpsertBySlug(ctx context.Context, post models.Post) (int64, error)
	UpdateFields(ctx context.Context, postID int64, updates map[string]interface{}) error
	UpdateSlug(ctx context.Context, postID int64, slug string) error
	GetByID(ctx context.Context, postID int64) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	IncrementViewCount(ctx context.Context, postID int64) error
	List(ctx context.Context, filter PostListFilter) ([]models.Post, int, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	Delete(ctx context.Context, postID int64) error
	Stats(ctx context.Context) (models.PostStats, error)
}

type CategoryRepository interface {
	UpsertBySlug(ctx context.Context, category models.Category) (int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (int64, error)
	UserByIdentifier(ctx context.Context, identifier string) (models.User, error)
	GetByID(ctx context.Context, userID int64) (models.User, error)
	ByResetToken(ctx context.Context, token string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateFields(ctx context.Context, userID int64, updates map[string]interface{}) error
	Delete(ctx context.Context, userID int64) error
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error)
}

type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID int64, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID int64, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID int64, token string) error
	DeleteAllUserTokens(ctx context.Context, userID int64) error
}
