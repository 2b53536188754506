package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db       *pgxpool.Pool
	Post     PostRepository
	Category CategoryRepository
	User     UserRepository
	Setting  SettingRepository
	Media    MediaRepository
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{
		db:       db,
		Post:     NewPostRepository(db),
		Category: NewCategoryRepository(db),
		User:     NewUserRepository(db),
		Setting:  NewSettingRepository(db),
		Media:    NewMediaRepository(db),
	}, nil
}

func (r *Repository) Close() {
	r.db.Close()
}
