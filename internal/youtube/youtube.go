// Package youtube fetches the latest uploads of a channel via the
// public RSS feed, no API key required. Results are cached so the
// frontend can poll freely without hammering the feed.
package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"darkroom/internal/lib/logger/sl"

	gocache "github.com/patrickmn/go-cache"
)

const (
	feedURLFormat = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"
	cacheKey      = "latest_videos"
)

var ErrFeedUnavailable = errors.New("video feed unavailable")

type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Thumbnail   string    `json:"thumbnail"`
	PublishedAt time.Time `json:"published_at"`
}

// feed mirrors the Atom document the RSS endpoint serves.
type feed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []entry  `xml:"entry"`
}

type entry struct {
	VideoID   string    `xml:"videoId"`
	Title     string    `xml:"title"`
	Published time.Time `xml:"published"`
	Link      struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Group struct {
		Thumbnail struct {
			URL string `xml:"url,attr"`
		} `xml:"thumbnail"`
	} `xml:"group"`
}

type Service struct {
	log       *slog.Logger
	client    *http.Client
	channelID string
	limit     int
	cache     *gocache.Cache
}

func NewService(log *slog.Logger, channelID string, limit int, cacheTTL time.Duration) *Service {
	if limit <= 0 {
		limit = 6
	}
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	return &Service{
		log:       log,
		client:    &http.Client{Timeout: 15 * time.Second},
		channelID: channelID,
		limit:     limit,
		cache:     gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// LatestVideos returns the newest uploads, served from cache when the
// previous fetch is still fresh.
func (s *Service) LatestVideos(ctx context.Context) ([]Video, error) {
	const op = "youtube.Service.LatestVideos"

	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]Video), nil
	}

	videos, err := s.fetch(ctx)
	if err != nil {
		s.log.Error("failed to fetch video feed", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrFeedUnavailable)
	}

	s.cache.SetDefault(cacheKey, videos)

	s.log.Info("video feed refreshed",
		slog.String("op", op),
		slog.Int("count", len(videos)),
	)

	return videos, nil
}

func (s *Service) fetch(ctx context.Context) ([]Video, error) {
	url := fmt.Sprintf(feedURLFormat, s.channelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	return ParseFeed(body, s.limit)
}

// ParseFeed decodes the Atom feed and returns at most limit videos,
// newest first as the feed orders them.
func ParseFeed(data []byte, limit int) ([]Video, error) {
	var f feed
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	videos := make([]Video, 0, limit)
	for _, e := range f.Entries {
		if e.VideoID == "" {
			continue
		}
		videos = append(videos, Video{
			ID:          e.VideoID,
			Title:       e.Title,
			URL:         e.Link.Href,
			Thumbnail:   e.Group.Thumbnail.URL,
			PublishedAt: e.Published,
		})
		if len(videos) == limit {
			break
		}
	}

	return videos, nil
}
