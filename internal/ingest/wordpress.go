package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// rendered is the {"rendered": "..."} wrapper the WordPress REST export
// uses for title/content/excerpt.
type rendered struct {
	Rendered string `json:"rendered"`
}

// ExternalPost is one record of a WordPress export dump. It is
// ephemeral: records are transformed and upserted, never stored as-is.
type ExternalPost struct {
	ID            int64    `json:"id"`
	Date          string   `json:"date"`
	Slug          string   `json:"slug"`
	Status        string   `json:"status"`
	Title         rendered `json:"title"`
	Content       rendered `json:"content"`
	Excerpt       rendered `json:"excerpt"`
	Categories    []int    `json:"categories"`
	FeaturedMedia string   `json:"jetpack_featured_media_url"`
}

// PublishedAt parses the export date. WordPress emits a local timestamp
// without zone information.
func (p ExternalPost) PublishedAt() (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05", p.Date)
}

// LoadExport reads a WordPress export dump (an array of posts) from a
// JSON file.
func LoadExport(path string) ([]ExternalPost, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	var posts []ExternalPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}

	return posts, nil
}
