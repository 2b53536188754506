package repository

import (
	"context"
	"errors"
	"fmt"

	"darkroom/internal/domain/models"
	"darkroom/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type CategoryRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// UpsertBySlug creates the category or refreshes its name, keyed by the
// unique slug. Ingestion calls this before every batch.
func (r *CategoryRepo) UpsertBySlug(ctx context.Context, category models.Category) (int64, error) {
	const op = "repository.category_repository.UpsertBySlug"

	query, args, err := r.sb.Insert("categories").
		Columns("name", "slug").
		Values(category.Name, category.Slug).
		Suffix("ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	const op = "repository.category_repository.GetBySlug"

	query, args, err := r.sb.Select("id", "name", "slug").
		From("categories").
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var category models.Category
	err = r.db.QueryRow(ctx, query, args...).Scan(&category.ID, &category.Name, &category.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrCategoryNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &category, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	const op = "repository.category_repository.List"

	query, args, err := r.sb.Select("id", "name", "slug").
		From("categories").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		categories = append(categories, category)
	}

	return categories, nil
}
