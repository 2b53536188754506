// Package ingest imports externally-sourced posts (WordPress exports)
// into local storage: category mapping, media-type classification, slug
// resolution and upserts, with per-record failure isolation.
package ingest

import (
	"regexp"
	"strings"

	"darkroom/internal/domain/models"
)

var (
	soundcloudRe = regexp.MustCompile(`https://soundcloud\.com/[^\s"']+`)
	youtubeRe    = regexp.MustCompile(`https://(www\.)?(youtube\.com|youtu\.be)/[^\s"']+`)
)

// Classification is the outcome of sniffing a post's HTML content for
// embedded media markers.
type Classification struct {
	PostType models.PostType
	VideoURL string
	AudioURL string
}

// Classify decides whether raw post content is an article, video or
// audio post and extracts the first matching embed URL.
//
// SoundCloud is checked before YouTube; content carrying both markers
// classifies as audio. This is a best-effort heuristic, not a
// validator: a marker substring without an extractable URL still
// switches the type and leaves the URL empty.
func Classify(contentHTML string) Classification {
	c := Classification{PostType: models.TypeArticle}

	switch {
	case strings.Contains(contentHTML, "soundcloud.com"):
		c.PostType = models.TypeAudio
		c.AudioURL = soundcloudRe.FindString(contentHTML)
	case strings.Contains(contentHTML, "youtube.com"), strings.Contains(contentHTML, "youtu.be"):
		c.PostType = models.TypeVideo
		c.VideoURL = youtubeRe.FindString(contentHTML)
	}

	return c
}
