package insights

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-insights/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func videoRow(id string, views any, duration string, published time.Time) models.RawRow {
	return models.RawRow{
		"videoId":     id,
		"channelId":   "UC" + id,
		"title":       "Video " + id,
		"views":       views,
		"likes":       "10",
		"comments":    "1",
		"duration":    duration,
		"publishedAt": published.Format(time.RFC3339),
	}
}

func TestBuildVideoRecordScenario(t *testing.T) {
	raw := models.RawRow{
		"videoId":     "abc123",
		"channelId":   "UCxyz",
		"title":       "Dragon speedrun",
		"views":       "12,345",
		"likes":       "200",
		"comments":    "10",
		"duration":    "PT1M5S",
		"publishedAt": testNow.Add(-72 * time.Hour).Format(time.RFC3339),
	}

	v := BuildVideoRecord(raw, testNow)

	assert.Equal(t, "abc123", v.VideoID)
	assert.Equal(t, "UCxyz", v.ChannelID)
	assert.Equal(t, int64(12345), v.Views)
	assert.Equal(t, int64(200), v.Likes)
	assert.Equal(t, int64(10), v.Comments)
	assert.Equal(t, 65, v.DurationSeconds)
	assert.Equal(t, "01:05", v.Duration)
	assert.True(t, v.PublishedValid)
	assert.InDelta(t, 3.0, v.DaysSincePublished, 1e-9)
	assert.InDelta(t, 4115.0, v.ViewsPerDay, 1e-9)
	assert.Equal(t, int64(4115), v.RoundedViewsPerDay)
	assert.Equal(t, models.TagPoor, v.Tag)
	assert.Equal(t, "#6b7280", v.TagColor)
}

func TestBuildVideoRecordIsPure(t *testing.T) {
	raw := videoRow("a", "1,000", "PT2M", testNow.Add(-48*time.Hour))
	assert.Equal(t, BuildVideoRecord(raw, testNow), BuildVideoRecord(raw, testNow))
}

func TestBuildVideoRecordMalformedRow(t *testing.T) {
	v := BuildVideoRecord(models.RawRow{"views": "n/a", "duration": "??", "publishedAt": "yesterday"}, testNow)

	assert.Equal(t, int64(0), v.Views)
	assert.Equal(t, 0, v.DurationSeconds)
	assert.False(t, v.PublishedValid)
	assert.True(t, v.PublishedAt.IsZero())
	assert.Equal(t, 1.0, v.DaysSincePublished)
	assert.Equal(t, 0.0, v.ViewsPerDay)
	assert.Equal(t, models.TagPoor, v.Tag)
}

func TestBuildVideoRecordSameDayIsNotInflated(t *testing.T) {
	v := BuildVideoRecord(videoRow("a", 1000, "PT2M", testNow.Add(-time.Hour)), testNow)
	assert.Equal(t, 1.0, v.DaysSincePublished)
	assert.Equal(t, 1000.0, v.ViewsPerDay)

	future := BuildVideoRecord(videoRow("b", 1000, "PT2M", testNow.Add(48*time.Hour)), testNow)
	assert.Equal(t, 1.0, future.DaysSincePublished)
}

func TestBuildVideos(t *testing.T) {
	rows := []models.RawRow{
		videoRow("low", "100", "PT5M", testNow.Add(-24*time.Hour)),
		videoRow("short", "999999", "PT59S", testNow.Add(-24*time.Hour)),
		videoRow("edge", "500", "PT1M", testNow.Add(-24*time.Hour)),
		videoRow("high", "5000", "PT10M", testNow.Add(-24*time.Hour)),
		videoRow("tie", "100", "PT3M", testNow.Add(-24*time.Hour)),
		{"videoId": "nodate", "views": "300", "duration": "PT2M"},
	}

	videos, report := BuildVideos(rows, testNow, BuildOptions{MinDurationSeconds: DefaultMinDurationSeconds})

	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.VideoID
	}
	assert.Equal(t, []string{"high", "nodate", "low", "tie"}, ids)
	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 4, report.Kept)
	assert.Equal(t, 2, report.TooShort)
	assert.Equal(t, []string{"nodate"}, report.InvalidDates)
}

func TestBuildVideosWithoutMinimum(t *testing.T) {
	rows := []models.RawRow{videoRow("short", "1", "PT5S", testNow)}
	videos, report := BuildVideos(rows, testNow, BuildOptions{})
	require.Len(t, videos, 1)
	assert.Equal(t, 0, report.TooShort)
}

func TestBuildKeywordRecordScenario(t *testing.T) {
	k := BuildKeywordRecord(models.RawRow{"palabra_clave": "dragon", "apariciones": 50, "media_visitas": 20000})

	assert.Equal(t, "dragon", k.Keyword)
	assert.Equal(t, int64(50), k.Uses)
	assert.Equal(t, int64(20000), k.AvgViews)
	assert.Equal(t, int64(1000000), k.Impact)
	assert.Equal(t, models.TrendExplosive, k.Trend)
	assert.Equal(t, "🚀", k.TrendIcon)

	assert.Equal(t, k, BuildKeywordRecord(models.RawRow{"palabra_clave": "dragon", "apariciones": 50, "media_visitas": 20000}))
}

func TestBuildKeywords(t *testing.T) {
	rows := []models.RawRow{
		{"palabra_clave": "Dragon ", "apariciones": "10", "media_visitas": "1000"},
		{"palabra_clave": "minecraft", "apariciones": "5", "media_visitas": "100000"},
		{"palabra_clave": "dragon", "apariciones": "30", "media_visitas": "3000"},
		{"palabra_clave": "", "apariciones": "99", "media_visitas": "99"},
		{"keyword": "speedrun", "uses": "1", "avg_views": "10"},
	}

	keywords := BuildKeywords(rows, 0)
	require.Len(t, keywords, 3)

	assert.Equal(t, "minecraft", keywords[0].Keyword)
	assert.Equal(t, int64(500000), keywords[0].Impact)

	dragon := keywords[1]
	assert.Equal(t, "dragon", dragon.Keyword)
	assert.Equal(t, int64(40), dragon.Uses)
	assert.Equal(t, int64(2500), dragon.AvgViews)
	assert.Equal(t, int64(100000), dragon.Impact)

	assert.Equal(t, "speedrun", keywords[2].Keyword)
}

func TestBuildKeywordsLimit(t *testing.T) {
	var rows []models.RawRow
	for i := 0; i < 150; i++ {
		rows = append(rows, models.RawRow{"keyword": string(rune('a'+i%26)) + string(rune('a'+i/26)), "uses": i + 1, "avg_views": 10})
	}

	keywords := BuildKeywords(rows, DefaultKeywordLimit)
	require.Len(t, keywords, DefaultKeywordLimit)
	assert.Equal(t, int64(1500), keywords[0].Impact)
	for i := 1; i < len(keywords); i++ {
		assert.GreaterOrEqual(t, keywords[i-1].Impact, keywords[i].Impact)
	}
}

func TestBuildKeywordsZeroUses(t *testing.T) {
	keywords := BuildKeywords([]models.RawRow{
		{"keyword": "idle", "uses": "0", "avg_views": "100"},
		{"keyword": "idle", "uses": "0", "avg_views": "300"},
	}, 10)
	require.Len(t, keywords, 1)
	assert.Equal(t, int64(200), keywords[0].AvgViews)
	assert.Equal(t, int64(0), keywords[0].Impact)
}

func TestBuildKeywordsLargeImpactSaturates(t *testing.T) {
	keywords := BuildKeywords([]models.RawRow{
		{"keyword": "small", "uses": "10", "avg_views": "1000"},
		{"keyword": "huge", "uses": "3037000500", "avg_views": "3037000500"},
		{"keyword": "bigger", "uses": "4000000000", "avg_views": "4000000000"},
	}, 2)

	require.Len(t, keywords, 2)
	for _, k := range keywords {
		assert.Equal(t, int64(math.MaxInt64), k.Impact, k.Keyword)
		assert.Equal(t, models.TrendExplosive, k.Trend, k.Keyword)
	}
	assert.Equal(t, "huge", keywords[0].Keyword)
	assert.Equal(t, "bigger", keywords[1].Keyword)
}

func TestBuildKeywordsMergedUsesSaturate(t *testing.T) {
	keywords := BuildKeywords([]models.RawRow{
		{"keyword": "everywhere", "uses": "9223372036854775807", "avg_views": "10"},
		{"keyword": "Everywhere", "uses": "9223372036854775807", "avg_views": "10"},
	}, 10)

	require.Len(t, keywords, 1)
	assert.Equal(t, int64(math.MaxInt64), keywords[0].Uses)
	assert.Equal(t, int64(math.MaxInt64), keywords[0].Impact)
}
