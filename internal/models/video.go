package models

import (
	"fmt"
	"strings"
	"time"
)

// RawRow is one untyped spreadsheet row keyed by column name
type RawRow map[string]any

// Value returns the first non-nil value found under any of the given column names
func (r RawRow) Value(keys ...string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// String returns the value under the first matching column as trimmed text
func (r RawRow) String(keys ...string) string {
	v := r.Value(keys...)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Column names of the recent videos sheet
var (
	ColVideoID     = []string{"videoId", "video_id", "id"}
	ColChannelID   = []string{"channelId", "channel_id"}
	ColTitle       = []string{"title"}
	ColViews       = []string{"views", "viewCount"}
	ColLikes       = []string{"likes", "likeCount"}
	ColComments    = []string{"comments", "commentCount"}
	ColDuration    = []string{"duration"}
	ColPublishedAt = []string{"publishedAt", "published_at"}
)

// Tag is the discrete views-per-day tier of a video
type Tag string

const (
	TagMustScript Tag = "must_script"
	TagTop        Tag = "top"
	TagVeryHigh   Tag = "very_high"
	TagHigh       Tag = "high"
	TagNormal     Tag = "normal"
	TagLow        Tag = "low"
	TagPoor       Tag = "poor"
)

// VideoRecord is a video row after normalization and scoring
type VideoRecord struct {
	VideoID            string    `json:"video_id"`
	ChannelID          string    `json:"channel_id"`
	Title              string    `json:"title"`
	Views              int64     `json:"views"`
	Likes              int64     `json:"likes"`
	Comments           int64     `json:"comments"`
	DurationSeconds    int       `json:"duration_seconds"`
	Duration           string    `json:"duration"`
	PublishedAt        time.Time `json:"published_at"`
	PublishedValid     bool      `json:"published_valid"`
	DaysSincePublished float64   `json:"days_since_published"`
	ViewsPerDay        float64   `json:"views_per_day"`
	RoundedViewsPerDay int64     `json:"rounded_views_per_day"`
	Tag                Tag       `json:"tag"`
	TagLabel           string    `json:"tag_label"`
	TagColor           string    `json:"tag_color"`
}

// URL is the watch link of the video
func (v VideoRecord) URL() string {
	return fmt.Sprintf("https://youtu.be/%s", v.VideoID)
}

// ThumbnailURL is the medium quality thumbnail of the video
func (v VideoRecord) ThumbnailURL() string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", v.VideoID)
}

// ScriptBrief is an AI drafted outline for a top-tier video
type ScriptBrief struct {
	VideoID string   `json:"video_id"`
	Hook    string   `json:"hook"`
	Angle   string   `json:"angle"`
	Outline []string `json:"outline"`
}

// DigestReport is the email sent after a refresh with high-potential videos
type DigestReport struct {
	Date     time.Time              `json:"date"`
	Videos   []VideoRecord          `json:"videos"`
	Briefs   map[string]ScriptBrief `json:"briefs"`
	Summary  Summary                `json:"summary"`
	Keywords []KeywordRecord        `json:"keywords"`
}
