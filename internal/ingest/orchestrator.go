package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"darkroom/internal/domain/models"
	"darkroom/internal/lib/logger/sl"
	"darkroom/internal/metrics"
	"darkroom/internal/slug"
)

// PostStore is the storage capability the orchestrator writes posts
// through. UpsertBySlug creates the post or updates the existing row
// carrying the same slug.
type PostStore interface {
	slug.Store
	UpsertBySlug(ctx context.Context, post models.Post) (int64, error)
}

// CategoryStore creates categories idempotently before posts reference
// them.
type CategoryStore interface {
	UpsertBySlug(ctx context.Context, category models.Category) (int64, error)
}

// Config carries the mapping tables for one source dump. They are
// injected rather than hard-coded so the orchestrator is reusable
// across exports.
type Config struct {
	// CategoryMap translates external taxonomy ids to the configured
	// ids in Categories. After seeding, the mapping is rewritten onto
	// the ids storage actually assigned.
	CategoryMap map[int]int64
	// DefaultCategoryID is the fallback when no external id maps. It
	// goes through the same rewrite as CategoryMap values.
	DefaultCategoryID int64
	// Categories are upserted before the batch so every mapped id
	// resolves to an existing row.
	Categories []models.Category
}

type Orchestrator struct {
	log        *slog.Logger
	posts      PostStore
	categories CategoryStore
	resolver   *slug.Resolver
	cfg        Config

	// Effective mapping after seeding. The configured category ids are
	// labels tying CategoryMap entries to seeds; the ids assigned by
	// storage are authoritative and need not match on a fresh database.
	catMap     map[int]int64
	defaultCat int64
}

func NewOrchestrator(log *slog.Logger, posts PostStore, categories CategoryStore, cfg Config) *Orchestrator {
	return &Orchestrator{
		log:        log,
		posts:      posts,
		categories: categories,
		resolver:   slug.NewResolver(posts),
		cfg:        cfg,
		catMap:     cfg.CategoryMap,
		defaultCat: cfg.DefaultCategoryID,
	}
}

// Ingest drives a batch of external records through category mapping,
// classification, slug resolution and upserts. A failed record is
// recorded and the batch continues; only context cancellation stops the
// run early. Each record's upsert is its own unit of work, so an
// interrupted run leaves already-committed records intact.
func (o *Orchestrator) Ingest(ctx context.Context, records []ExternalPost) (*Report, error) {
	const op = "ingest.Orchestrator.Ingest"

	log := o.log.With(slog.String("op", op))
	log.Info("starting ingestion", slog.Int("records", len(records)))

	if err := o.ensureCategories(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := &Report{}
	for i := range records {
		if err := ctx.Err(); err != nil {
			log.Warn("ingestion interrupted", sl.Err(err))
			return report, fmt.Errorf("%s: %w", op, err)
		}

		res := o.ingestOne(ctx, records[i])
		report.add(res)

		if res.Error != "" {
			metrics.IngestRecordsTotal.WithLabelValues("failed").Inc()
			log.Error("record failed",
				slog.Int64("external_id", res.ExternalID),
				slog.String("title", res.Title),
				slog.String("error", res.Error),
			)
			continue
		}

		metrics.IngestRecordsTotal.WithLabelValues("succeeded").Inc()
		log.Info("record ingested",
			slog.Int64("external_id", res.ExternalID),
			slog.String("slug", res.Slug),
			slog.String("post_type", string(res.PostType)),
		)
	}

	log.Info("ingestion finished",
		slog.Int("processed", report.Processed),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
	)

	return report, nil
}

func (o *Orchestrator) ensureCategories(ctx context.Context) error {
	assigned := make(map[int64]int64, len(o.cfg.Categories))
	for _, c := range o.cfg.Categories {
		id, err := o.categories.UpsertBySlug(ctx, c)
		if err != nil {
			return fmt.Errorf("upsert category %q: %w", c.Slug, err)
		}
		assigned[c.ID] = id
	}

	// Remap the lookup table onto the ids the rows actually received,
	// so imported posts never reference a category id that exists only
	// in config.
	o.catMap = make(map[int]int64, len(o.cfg.CategoryMap))
	for ext, configured := range o.cfg.CategoryMap {
		if actual, ok := assigned[configured]; ok {
			o.catMap[ext] = actual
			continue
		}
		o.catMap[ext] = configured
	}
	o.defaultCat = o.cfg.DefaultCategoryID
	if actual, ok := assigned[o.cfg.DefaultCategoryID]; ok {
		o.defaultCat = actual
	}

	return nil
}

func (o *Orchestrator) ingestOne(ctx context.Context, rec ExternalPost) RecordResult {
	res := RecordResult{ExternalID: rec.ID, Title: rec.Title.Rendered}

	title := rec.Title.Rendered
	if title == "" {
		title = "No Title"
	}

	res.CategoryID = MapCategory(rec.Categories, o.catMap, o.defaultCat)

	cls := Classify(rec.Content.Rendered)
	res.PostType = cls.PostType

	postSlug := rec.Slug
	if postSlug == "" {
		base := slug.Normalize(title)
		if base == "" {
			// The external id is the stem here; interactive creates
			// have no id before insert and use the bare "post" stem.
			base = fmt.Sprintf("post-%d", rec.ID)
		}

		var err error
		postSlug, err = o.resolver.Resolve(ctx, base, 0)
		if err != nil {
			res.Error = err.Error()
			return res
		}
	}
	res.Slug = postSlug

	status := models.StatusDraft
	post := models.Post{
		Title:      title,
		Slug:       postSlug,
		Content:    rec.Content.Rendered,
		Excerpt:    rec.Excerpt.Rendered,
		PostType:   cls.PostType,
		CategoryID: res.CategoryID,
	}

	if rec.FeaturedMedia != "" {
		post.FeaturedImage = &rec.FeaturedMedia
	}
	if cls.VideoURL != "" {
		post.VideoURL = &cls.VideoURL
	}
	if cls.AudioURL != "" {
		post.AudioURL = &cls.AudioURL
	}

	if rec.Status == "publish" {
		status = models.StatusPublished
		if ts, err := rec.PublishedAt(); err == nil {
			post.PublishedAt = &ts
		} else {
			o.log.Warn("unparseable publish date",
				slog.Int64("external_id", rec.ID),
				slog.String("date", rec.Date),
			)
		}
	}
	post.Status = status
	res.Status = status

	if _, err := o.posts.UpsertBySlug(ctx, post); err != nil {
		res.Error = err.Error()
	}

	return res
}
