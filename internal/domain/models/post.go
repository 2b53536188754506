package models

import (
	"time"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPending   PostStatus = "pending"
	StatusPublished PostStatus = "published"
)

type PostType string

const (
	TypeArticle PostType = "article"
	TypeVideo   PostType = "video"
	TypeAudio   PostType = "audio"
)

type Post struct {
	ID            int64      `db:"id" json:"id"`
	Title         string     `db:"title" json:"title"`
	Slug          string     `db:"slug" json:"slug"`
	Excerpt       string     `db:"excerpt" json:"excerpt,omitempty"`
	Content       string     `db:"content" json:"content"`
	FeaturedImage *string    `db:"featured_image" json:"featured_image,omitempty"`
	PostType      PostType   `db:"post_type" json:"post_type"`
	VideoURL      *string    `db:"video_url" json:"video_url,omitempty"`
	AudioURL      *string    `db:"audio_url" json:"audio_url,omitempty"`
	CategoryID    int64      `db:"category_id" json:"category_id"`
	Category      *Category  `db:"-" json:"category,omitempty"`
	Status        PostStatus `db:"status" json:"status"`
	ViewCount     int64      `db:"view_count" json:"view_count"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// PostSummary is the lightweight shape handed to the realtime notifier
// after a successful publish.
type PostSummary struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt,omitempty"`
	FeaturedImage *string    `json:"featured_image,omitempty"`
	PostType      PostType   `json:"post_type"`
	CategoryName  string     `json:"category_name,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ViewCount     int64      `json:"view_count"`
}

// PostStats feeds the admin dashboard counters.
type PostStats struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Pending   int64 `json:"pending"`
	Draft     int64 `json:"draft"`
	Articles  int64 `json:"articles"`
	Videos    int64 `json:"videos"`
	Audio     int64 `json:"audio"`
}

func (p *Post) Summary() PostSummary {
	s := PostSummary{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		PostType:      p.PostType,
		PublishedAt:   p.PublishedAt,
		ViewCount:     p.ViewCount,
	}
	if p.Category != nil {
		s.CategoryName = p.Category.Name
	}
	return s
}
