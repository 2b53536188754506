package models

import (
	"encoding/json"
	"time"
)

// Setting is a keyed blob of site configuration (breaking-news ticker,
// donation options). The value is opaque JSON owned by the admin UI.
type Setting struct {
	Key       string          `db:"key" json:"key"`
	Value     json.RawMessage `db:"value" json:"value"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Well-known setting keys.
const (
	SettingBreakingNews = "breaking_news"
	SettingDonation     = "donation"
)
