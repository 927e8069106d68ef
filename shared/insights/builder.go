package insights

import (
	"math"
	"sort"
	"time"

	"video-insights/internal/models"
)

// DefaultMinDurationSeconds drops shorts and trailers from the video grid
const DefaultMinDurationSeconds = 60

// DefaultKeywordLimit caps the keyword browser
const DefaultKeywordLimit = 100

// BuildOptions tunes the collection level steps of the builder
type BuildOptions struct {
	// MinDurationSeconds keeps only videos strictly longer than this; 0 keeps all
	MinDurationSeconds int
}

// BuildReport describes what the builder dropped or repaired
type BuildReport struct {
	Rows         int
	Kept         int
	TooShort     int
	InvalidDates []string
}

// BuildVideoRecord enriches one raw video row. It never fails: unusable fields
// fall back to zero values, and an unparseable timestamp counts as published today.
func BuildVideoRecord(raw models.RawRow, now time.Time) models.VideoRecord {
	views := NormalizeCount(raw.Value(models.ColViews...))
	seconds := DecodeDuration(raw.String(models.ColDuration...))

	publishedAt, ok := ParseTimestamp(raw.String(models.ColPublishedAt...))
	days := 1.0
	if ok {
		days = DaysSince(publishedAt, now)
	}
	vpd := ViewsPerDay(views, days)
	tag := ClassifyVideo(vpd)

	return models.VideoRecord{
		VideoID:            raw.String(models.ColVideoID...),
		ChannelID:          raw.String(models.ColChannelID...),
		Title:              raw.String(models.ColTitle...),
		Views:              views,
		Likes:              NormalizeCount(raw.Value(models.ColLikes...)),
		Comments:           NormalizeCount(raw.Value(models.ColComments...)),
		DurationSeconds:    seconds,
		Duration:           FormatDuration(seconds),
		PublishedAt:        publishedAt,
		PublishedValid:     ok,
		DaysSincePublished: days,
		ViewsPerDay:        vpd,
		RoundedViewsPerDay: int64(math.Round(vpd)),
		Tag:                tag.Tag,
		TagLabel:           tag.Label,
		TagColor:           tag.Color,
	}
}

// BuildVideos enriches every row, drops videos that are too short and orders
// the rest by views, highest first. Ties keep sheet order.
func BuildVideos(rows []models.RawRow, now time.Time, opts BuildOptions) ([]models.VideoRecord, BuildReport) {
	report := BuildReport{Rows: len(rows)}
	videos := make([]models.VideoRecord, 0, len(rows))

	for _, row := range rows {
		v := BuildVideoRecord(row, now)
		if opts.MinDurationSeconds > 0 && v.DurationSeconds <= opts.MinDurationSeconds {
			report.TooShort++
			continue
		}
		if !v.PublishedValid {
			report.InvalidDates = append(report.InvalidDates, v.VideoID)
		}
		videos = append(videos, v)
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].Views > videos[j].Views
	})
	report.Kept = len(videos)

	return videos, report
}

// BuildKeywordRecord enriches one raw keyword row
func BuildKeywordRecord(raw models.RawRow) models.KeywordRecord {
	return newKeyword(
		NormalizeKeyword(raw.String(models.ColKeyword...)),
		NormalizeCount(raw.Value(models.ColUses...)),
		NormalizeCount(raw.Value(models.ColAvgViews...)),
	)
}

func newKeyword(keyword string, uses, avgViews int64) models.KeywordRecord {
	impact := saturatingMul(max(avgViews, 0), max(uses, 0))
	trend := ClassifyKeyword(impact)
	return models.KeywordRecord{
		Keyword:   keyword,
		Uses:      uses,
		AvgViews:  avgViews,
		Impact:    impact,
		Trend:     trend.Trend,
		TrendIcon: trend.Icon,
	}
}

// BuildKeywords enriches keyword rows, merges rows sharing a normalized keyword,
// and keeps the top limit entries by impact. A non-positive limit keeps all.
func BuildKeywords(rows []models.RawRow, limit int) []models.KeywordRecord {
	type acc struct {
		uses     int64
		weighted float64
		plainSum float64
		rows     int
	}

	var order []string
	merged := make(map[string]*acc)
	for _, row := range rows {
		k := BuildKeywordRecord(row)
		if k.Keyword == "" {
			continue
		}
		a, ok := merged[k.Keyword]
		if !ok {
			a = &acc{}
			merged[k.Keyword] = a
			order = append(order, k.Keyword)
		}
		a.uses = saturatingAdd(a.uses, k.Uses)
		a.weighted += float64(k.AvgViews) * float64(k.Uses)
		a.plainSum += float64(k.AvgViews)
		a.rows++
	}

	keywords := make([]models.KeywordRecord, 0, len(order))
	for _, kw := range order {
		a := merged[kw]
		var avg float64
		if a.uses > 0 {
			avg = a.weighted / float64(a.uses)
		} else {
			avg = a.plainSum / float64(a.rows)
		}
		keywords = append(keywords, newKeyword(kw, a.uses, roundCount(avg)))
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].Impact > keywords[j].Impact
	})
	if limit > 0 && len(keywords) > limit {
		keywords = keywords[:limit]
	}

	return keywords
}

// saturatingMul multiplies two non-negative counts, pinning at math.MaxInt64
func saturatingMul(a, b int64) int64 {
	if a != 0 && b > math.MaxInt64/a {
		return math.MaxInt64
	}
	return a * b
}

// saturatingAdd adds two non-negative counts, pinning at math.MaxInt64
func saturatingAdd(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// roundCount rounds a non-negative average back to a count. Float values at or
// past 2^63 have no int64 form, so they pin at math.MaxInt64.
func roundCount(f float64) int64 {
	r := math.Round(f)
	if r >= math.MaxInt64 {
		return math.MaxInt64
	}
	if r <= 0 {
		return 0
	}
	return int64(r)
}
