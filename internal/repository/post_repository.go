package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"darkroom/internal/domain/models"
	"darkroom/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const pgUniqueViolation = "23505"

type PostRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostRepository(db *pgxpool.Pool) *PostRepo {
	return &PostRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// mapSlugConflict translates the posts.slug unique violation into the
// sentinel the services retry on.
func mapSlugConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return storage.ErrSlugTaken
	}
	return err
}

func (r *PostRepo) SlugExists(ctx context.Context, candidate string, excludeID int64) (bool, error) {
	const op = "repository.post_repository.SlugExists"

	qb := r.sb.Select("1").From("posts").Where(sq.Eq{"slug": candidate})
	if excludeID != 0 {
		qb = qb.Where(sq.NotEq{"id": excludeID})
	}

	query, args, err := qb.Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var one int
	err = r.db.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (r *PostRepo) Save(ctx context.Context, post models.Post) (int64, error) {
	const op = "repository.post_repository.Save"

	query, args, err := r.sb.Insert("posts").
		Columns(
			"title",
			"slug",
			"excerpt",
			"content",
			"featured_image",
			"post_type",
			"video_url",
			"audio_url",
			"category_id",
			"status",
			"published_at",
		).
		Values(
			post.Title,
			post.Slug,
			post.Excerpt,
			post.Content,
			post.FeaturedImage,
			post.PostType,
			post.VideoURL,
			post.AudioURL,
			post.CategoryID,
			post.Status,
			post.PublishedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapSlugConflict(err))
	}

	return id, nil
}

func (r *PostRepo) UpsertBySlug(ctx context.Context, post models.Post) (int64, error) {
	const op = "repository.post_repository.UpsertBySlug"

	query, args, err := r.sb.Insert("posts").
		Columns(
			"title",
			"slug",
			"excerpt",
			"content",
			"featured_image",
			"post_type",
			"video_url",
			"audio_url",
			"category_id",
			"status",
			"published_at",
		).
		Values(
			post.Title,
			post.Slug,
			post.Excerpt,
			post.Content,
			post.FeaturedImage,
			post.PostType,
			post.VideoURL,
			post.AudioURL,
			post.CategoryID,
			post.Status,
			post.PublishedAt,
		).
		Suffix(`ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			excerpt = EXCLUDED.excerpt,
			content = EXCLUDED.content,
			featured_image = EXCLUDED.featured_image,
			post_type = EXCLUDED.post_type,
			video_url = EXCLUDED.video_url,
			audio_url = EXCLUDED.audio_url,
			category_id = EXCLUDED.category_id,
			status = EXCLUDED.status,
			published_at = COALESCE(posts.published_at, EXCLUDED.published_at),
			updated_at = now()
		RETURNING id`).
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

func (r *PostRepo) UpdateFields(ctx context.Context, postID int64, updates map[string]interface{}) error {
	const op = "repository.post_repository.UpdateFields"

	allowedFields := map[string]bool{
		"title":          true,
		"slug":           true,
		"excerpt":        true,
		"content":        true,
		"featured_image": true,
		"post_type":      true,
		"video_url":      true,
		"audio_url":      true,
		"category_id":    true,
		"status":         true,
		"published_at":   true,
	}

	if len(updates) == 0 {
		return fmt.Errorf("%s: no fields to update", op)
	}

	updateBuilder := r.sb.Update("posts").
		Set("updated_at", time.Now())

	for field, value := range updates {
		if !allowedFields[field] {
			return fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}

		updateBuilder = updateBuilder.Set(field, value)
	}

	query, args, err := updateBuilder.Where(sq.Eq{"id": postID}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, mapSlugConflict(err))
	}

	return nil
}

func (r *PostRepo) UpdateSlug(ctx context.Context, postID int64, slug string) error {
	const op = "repository.post_repository.UpdateSlug"

	query, args, err := r.sb.Update("posts").
		Set("slug", slug).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": postID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, mapSlugConflict(err))
	}

	return nil
}

var postColumns = []string{
	"p.id", "p.title", "p.slug", "p.excerpt", "p.content",
	"p.featured_image", "p.post_type", "p.video_url", "p.audio_url",
	"p.category_id", "p.status", "p.view_count", "p.published_at",
	"p.created_at", "p.updated_at",
	"c.id", "c.name", "c.slug",
}

func (r *PostRepo) scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	var category models.Category

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&post.Content,
		&post.FeaturedImage,
		&post.PostType,
		&post.VideoURL,
		&post.AudioURL,
		&post.CategoryID,
		&post.Status,
		&post.ViewCount,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
		&category.ID,
		&category.Name,
		&category.Slug,
	)
	if err != nil {
		return nil, err
	}

	post.Category = &category
	return &post, nil
}

func (r *PostRepo) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	const op = "repository.post_repository.GetByID"

	query, args, err := r.sb.Select(postColumns...).
		From("posts p").
		Join("categories c ON c.id = p.category_id").
		Where(sq.Eq{"p.id": postID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := r.scanPost(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	const op = "repository.post_repository.GetBySlug"

	query, args, err := r.sb.Select(postColumns...).
		From("posts p").
		Join("categories c ON c.id = p.category_id").
		Where(sq.Eq{"p.slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := r.scanPost(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

func (r *PostRepo) IncrementViewCount(ctx context.Context, postID int64) error {
	const op = "repository.post_repository.IncrementViewCount"

	query, args, err := r.sb.Update("posts").
		Set("view_count", sq.Expr("view_count + 1")).
		Where(sq.Eq{"id": postID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostRepo) List(ctx context.Context, filter PostListFilter) ([]models.Post, int, error) {
	const op = "repository.post_repository.List"

	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 10
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	qb := r.sb.Select(postColumns...).
		From("posts p").
		Join("categories c ON c.id = p.category_id")

	countQb := r.sb.Select("COUNT(*)").
		From("posts p").
		Join("categories c ON c.id = p.category_id")

	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"p.status": filter.Status})
		countQb = countQb.Where(sq.Eq{"p.status": filter.Status})
	}
	if filter.CategorySlug != "" {
		qb = qb.Where(sq.Eq{"c.slug": filter.CategorySlug})
		countQb = countQb.Where(sq.Eq{"c.slug": filter.CategorySlug})
	}
	if filter.PostType != "" {
		qb = qb.Where(sq.Eq{"p.post_type": filter.PostType})
		countQb = countQb.Where(sq.Eq{"p.post_type": filter.PostType})
	}

	countQuery, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := qb.
		OrderBy("p.created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, *post)
	}

	return posts, total, nil
}

// ListAll returns every post in id order. Used by the slug-repair
// batch, which needs a stable walk over the whole table.
func (r *PostRepo) ListAll(ctx context.Context) ([]models.Post, error) {
	const op = "repository.post_repository.ListAll"

	query, args, err := r.sb.Select("id", "title", "slug").
		From("posts").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, post)
	}

	return posts, nil
}

func (r *PostRepo) Delete(ctx context.Context, postID int64) error {
	const op = "repository.post_repository.Delete"

	query, args, err := r.sb.Delete("posts").
		Where(sq.Eq{"id": postID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	return nil
}

func (r *PostRepo) Stats(ctx context.Context) (models.PostStats, error) {
	const op = "repository.post_repository.Stats"

	query := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'published'),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'draft'),
		COUNT(*) FILTER (WHERE post_type = 'article'),
		COUNT(*) FILTER (WHERE post_type = 'video'),
		COUNT(*) FILTER (WHERE post_type = 'audio')
	FROM posts`

	var stats models.PostStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Published,
		&stats.Pending,
		&stats.Draft,
		&stats.Articles,
		&stats.Videos,
		&stats.Audio,
	)
	if err != nil {
		return models.PostStats{}, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}
