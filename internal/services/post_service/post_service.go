package post_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"darkroom/internal/domain/models"
	"darkroom/internal/lib/logger/sl"
	"darkroom/internal/metrics"
	"darkroom/internal/notifier"
	"darkroom/internal/repository"
	"darkroom/internal/slug"
	"darkroom/internal/storage"
	"darkroom/internal/transport/http/dto"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrSlugConflict = errors.New("slug conflict")
	ErrForbidden    = errors.New("operation not permitted")
	ErrInvalidPost  = errors.New("invalid post payload")
)

// saveRetries bounds how many times a create/update is retried after a
// concurrent writer grabs the resolved slug between resolution and save.
const saveRetries = 2

type PostService struct {
	log      *slog.Logger
	posts    repository.PostRepository
	resolver *slug.Resolver
	notify   notifier.Notifier
}

func NewPostService(log *slog.Logger, posts repository.PostRepository, notify notifier.Notifier) *PostService {
	if notify == nil {
		notify = notifier.Noop{}
	}
	return &PostService{
		log:      log,
		posts:    posts,
		resolver: slug.NewResolver(posts),
		notify:   notify,
	}
}

// CreatePost stores a new post. The initial status depends on who is
// asking: super admins publish immediately, everyone else lands in the
// moderation queue.
func (s *PostService) CreatePost(ctx context.Context, req dto.CreatePostRequest, actor models.Role) (*models.Post, error) {
	const op = "services.PostService.CreatePost"

	log := s.log.With(slog.String("op", op), slog.String("title", req.Title))

	now := time.Now().UTC()
	post := models.Post{
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		FeaturedImage: req.FeaturedImage,
		PostType:      models.TypeArticle,
		VideoURL:      req.VideoURL,
		AudioURL:      req.AudioURL,
		CategoryID:    req.CategoryID,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.PostType != "" {
		post.PostType = models.PostType(req.PostType)
	}
	if actor == models.RoleSuperAdmin {
		post.Status = models.StatusPublished
		post.PublishedAt = &now
	}

	base := req.Slug
	if base == "" {
		base = slug.Normalize(req.Title)
	}
	if base == "" {
		// No id exists yet, so the numeric fallback is not available
		// on this path; probe from a generic stem instead.
		base = "post"
	}

	var lastErr error
	for attempt := 0; attempt <= saveRetries; attempt++ {
		resolved, err := s.resolver.Resolve(ctx, base, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		post.Slug = resolved

		id, err := s.posts.Save(ctx, post)
		if err == nil {
			post.ID = id
			break
		}
		if !errors.Is(err, storage.ErrSlugTaken) {
			log.Error("failed to save post", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lastErr = err
		log.Warn("slug taken by concurrent writer, re-resolving", slog.String("slug", resolved))
	}
	if post.ID == 0 {
		log.Error("gave up resolving slug after retries", sl.Err(lastErr))
		return nil, fmt.Errorf("%s: %w", op, ErrSlugConflict)
	}

	if post.Status == models.StatusPublished {
		metrics.PostsPublishedTotal.Inc()
		s.notify.PublishedPost(ctx, post.Summary())
	}

	log.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.String("status", string(post.Status)),
	)

	return s.getByID(ctx, op, post.ID)
}

// UpdatePost applies the non-nil fields of req. A changed title or an
// explicitly supplied slug triggers re-resolution, excluding the post
// itself so an unchanged slug is kept as is.
func (s *PostService) UpdatePost(ctx context.Context, postID int64, req dto.UpdatePostRequest) (*models.Post, error) {
	const op = "services.PostService.UpdatePost"

	log := s.log.With(slog.String("op", op), slog.Int64("post_id", postID))

	existing, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Excerpt != nil {
		updates["excerpt"] = *req.Excerpt
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.FeaturedImage != nil {
		updates["featured_image"] = *req.FeaturedImage
	}
	if req.PostType != nil {
		updates["post_type"] = *req.PostType
	}
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if req.AudioURL != nil {
		updates["audio_url"] = *req.AudioURL
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}

	published := false
	if req.Status != nil {
		status := models.PostStatus(*req.Status)
		updates["status"] = string(status)
		if status == models.StatusPublished && existing.Status != models.StatusPublished {
			now := time.Now().UTC()
			updates["published_at"] = now
			published = true
		}
	}

	base := ""
	switch {
	case req.Slug != nil && *req.Slug != "":
		base = *req.Slug
	case req.Slug != nil || req.Title != nil:
		title := existing.Title
		if req.Title != nil {
			title = *req.Title
		}
		base = slug.Normalize(title)
		if base == "" {
			base = fmt.Sprintf("post-%d", postID)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= saveRetries; attempt++ {
		if base != "" {
			resolved, err := s.resolver.Resolve(ctx, base, postID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			updates["slug"] = resolved
		}

		err = s.posts.UpdateFields(ctx, postID, updates)
		if err == nil {
			lastErr = nil
			break
		}
		if base == "" || !errors.Is(err, storage.ErrSlugTaken) {
			log.Error("failed to update post", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrSlugConflict)
	}

	updated, err := s.getByID(ctx, op, postID)
	if err != nil {
		return nil, err
	}

	if published {
		metrics.PostsPublishedTotal.Inc()
		s.notify.PublishedPost(ctx, updated.Summary())
	}

	log.Info("post updated", slog.String("slug", updated.Slug))

	return updated, nil
}

// ApprovePost moves a pending post to published. Only super admins may
// approve; PublishedAt is set once and never rewritten on re-approval.
func (s *PostService) ApprovePost(ctx context.Context, postID int64, actor models.Role) (*models.Post, error) {
	const op = "services.PostService.ApprovePost"

	log := s.log.With(slog.String("op", op), slog.Int64("post_id", postID))

	if actor != models.RoleSuperAdmin {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if post.Status == models.StatusPublished {
		return post, nil
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":       string(models.StatusPublished),
		"published_at": now,
	}
	if err := s.posts.UpdateFields(ctx, postID, updates); err != nil {
		log.Error("failed to approve post", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post.Status = models.StatusPublished
	post.PublishedAt = &now

	metrics.PostsPublishedTotal.Inc()
	s.notify.PublishedPost(ctx, post.Summary())

	log.Info("post approved", slog.String("slug", post.Slug))

	return post, nil
}

// GetBySlug fetches a post for reading. countView increments the view
// counter best effort; a failed increment never fails the read.
func (s *PostService) GetBySlug(ctx context.Context, slugStr string, countView bool) (*models.Post, error) {
	const op = "services.PostService.GetBySlug"

	post, err := s.posts.GetBySlug(ctx, slugStr)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if countView {
		if err := s.posts.IncrementViewCount(ctx, post.ID); err != nil {
			s.log.Warn("failed to increment view count",
				slog.String("op", op),
				slog.Int64("post_id", post.ID),
				sl.Err(err),
			)
		} else {
			post.ViewCount++
		}
	}

	return post, nil
}

func (s *PostService) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	const op = "services.PostService.GetByID"
	return s.getByID(ctx, op, postID)
}

// List returns posts matching filter plus the total match count.
// Readers without an elevated role only ever see published posts,
// whatever the filter asks for.
func (s *PostService) List(ctx context.Context, filter repository.PostListFilter, actor models.Role) ([]models.Post, int, error) {
	const op = "services.PostService.List"

	if !actor.Elevated() {
		filter.Status = models.StatusPublished
	}

	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return posts, total, nil
}

func (s *PostService) Delete(ctx context.Context, postID int64) error {
	const op = "services.PostService.Delete"

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("post deleted", slog.String("op", op), slog.Int64("post_id", postID))
	return nil
}

func (s *PostService) Stats(ctx context.Context) (models.PostStats, error) {
	const op = "services.PostService.Stats"

	stats, err := s.posts.Stats(ctx)
	if err != nil {
		return models.PostStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// RepairReport summarizes a RepairSlugs run.
type RepairReport struct {
	Total   int
	Updated int
}

// RepairSlugs walks every post, recomputes the canonical slug from the
// title and rewrites it when it differs from the stored one. Each post
// excludes itself from the uniqueness probe so an already-correct slug
// survives untouched.
func (s *PostService) RepairSlugs(ctx context.Context) (*RepairReport, error) {
	const op = "services.PostService.RepairSlugs"

	log := s.log.With(slog.String("op", op))

	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := &RepairReport{Total: len(posts)}

	for i := range posts {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%s: %w", op, err)
		}
		p := &posts[i]

		base := slug.Normalize(p.Title)
		if base == "" {
			base = fmt.Sprintf("post-%d", p.ID)
		}

		resolved, err := s.resolver.Resolve(ctx, base, p.ID)
		if err != nil {
			return report, fmt.Errorf("%s: %w", op, err)
		}
		if resolved == p.Slug {
			continue
		}

		if err := s.posts.UpdateSlug(ctx, p.ID, resolved); err != nil {
			log.Error("failed to rewrite slug",
				slog.Int64("post_id", p.ID),
				slog.String("slug", resolved),
				sl.Err(err),
			)
			return report, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("slug rewritten",
			slog.Int64("post_id", p.ID),
			slog.String("old", p.Slug),
			slog.String("new", resolved),
		)
		report.Updated++
	}

	log.Info("slug repair finished",
		slog.Int("total", report.Total),
		slog.Int("updated", report.Updated),
	)

	return report, nil
}

func (s *PostService) getByID(ctx context.Context, op string, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}
