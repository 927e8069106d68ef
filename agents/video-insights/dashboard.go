package videoinsights

import (
	"sync"
	"sync/atomic"
	"time"

	"video-insights/internal/models"
	"video-insights/shared/insights"
)

// Dashboard holds the published collections. Each collection is replaced as a whole;
// readers never observe a partially built one.
type Dashboard struct {
	pipeline insights.Pipeline
	tiers    int

	issued atomic.Uint64

	mu                sync.RWMutex
	videos            []models.VideoRecord
	keywords          []models.KeywordRecord
	videoGeneration   uint64
	keywordGeneration uint64
	updatedAt         time.Time
}

// VideoView is one filtered, windowed page of the video grid
type VideoView struct {
	Videos     []models.VideoRecord `json:"videos"`
	Total      int                  `json:"total"`
	Size       int                  `json:"size"`
	HasMore    bool                 `json:"has_more"`
	Summary    models.Summary       `json:"summary"`
	Generation uint64               `json:"generation"`
}

func NewDashboard(pipeline insights.Pipeline) *Dashboard {
	return &Dashboard{
		pipeline: pipeline,
		tiers:    pipeline.HighPotentialTiers,
		videos:   []models.VideoRecord{},
		keywords: []models.KeywordRecord{},
	}
}

// NextGeneration issues the token a fetch carries from start to publish
func (d *Dashboard) NextGeneration() uint64 {
	return d.issued.Add(1)
}

// ReplaceVideos publishes videos unless a later-started fetch already published.
// A nil slice publishes an empty collection.
func (d *Dashboard) ReplaceVideos(generation uint64, videos []models.VideoRecord) bool {
	if videos == nil {
		videos = []models.VideoRecord{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if generation <= d.videoGeneration {
		return false
	}
	d.videos = videos
	d.videoGeneration = generation
	d.updatedAt = time.Now()
	return true
}

func (d *Dashboard) ReplaceKeywords(generation uint64, keywords []models.KeywordRecord) bool {
	if keywords == nil {
		keywords = []models.KeywordRecord{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if generation <= d.keywordGeneration {
		return false
	}
	d.keywords = keywords
	d.keywordGeneration = generation
	d.updatedAt = time.Now()
	return true
}

func (d *Dashboard) snapshotVideos() ([]models.VideoRecord, uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.videos, d.videoGeneration
}

// VideoGeneration identifies the video collection currently published
func (d *Dashboard) VideoGeneration() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.videoGeneration
}

func (d *Dashboard) UpdatedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.updatedAt
}

// Filtered returns the videos matching state in display order
func (d *Dashboard) Filtered(state models.FilterState) ([]models.VideoRecord, uint64) {
	videos, gen := d.snapshotVideos()
	return d.pipeline.Apply(videos, state), gen
}

// View filters, summarizes and windows the current videos
func (d *Dashboard) View(state models.FilterState, size int) VideoView {
	filtered, gen := d.Filtered(state)
	return d.view(filtered, gen, size)
}

func (d *Dashboard) view(filtered []models.VideoRecord, gen uint64, size int) VideoView {
	return VideoView{
		Videos:     insights.Window(filtered, size),
		Total:      len(filtered),
		Size:       size,
		HasMore:    size < len(filtered),
		Summary:    insights.Summarize(filtered, d.tiers),
		Generation: gen,
	}
}

// Keywords returns the published keywords whose text contains query, ignoring case
func (d *Dashboard) Keywords(query string) []models.KeywordRecord {
	d.mu.RLock()
	keywords := d.keywords
	d.mu.RUnlock()
	return insights.FilterKeywords(keywords, query)
}

// HighPotential returns up to limit of the published videos in the top tiers, in baseline order
func (d *Dashboard) HighPotential(limit int) []models.VideoRecord {
	filtered, _ := d.Filtered(models.FilterState{Category: models.CategoryPopular})
	return insights.Window(filtered, limit)
}
