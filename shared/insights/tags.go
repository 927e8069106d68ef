package insights

import (
	"math"

	"video-insights/internal/models"
)

// Threshold pairs an exclusive lower bound with the value assigned above it
type Threshold[T any] struct {
	Above float64
	Value T
}

// Table is a strictly descending threshold table. The first entry whose bound
// the score exceeds wins; the last entry is the catch-all.
type Table[T any] []Threshold[T]

// Lookup classifies score against the table
func (t Table[T]) Lookup(score float64) T {
	for i, th := range t {
		if i == len(t)-1 || score > th.Above {
			return th.Value
		}
	}
	var zero T
	return zero
}

// TagInfo is the display side of a video tier
type TagInfo struct {
	Tag   models.Tag
	Label string
	Color string
}

// TrendInfo is the display side of a keyword impact class
type TrendInfo struct {
	Trend models.Trend
	Icon  string
}

// VideoTags classifies rounded views per day, highest tier first
var VideoTags = Table[TagInfo]{
	{Above: 600000, Value: TagInfo{models.TagMustScript, "✍️ Must script now", "#d946ef"}},
	{Above: 400000, Value: TagInfo{models.TagTop, "🧠 Top", "#6b7280"}},
	{Above: 200000, Value: TagInfo{models.TagVeryHigh, "🔥 Very high", "#f97316"}},
	{Above: 100000, Value: TagInfo{models.TagHigh, "👍 High", "#facc15"}},
	{Above: 50000, Value: TagInfo{models.TagNormal, "👌 Normal", "#3b82f6"}},
	{Above: 20000, Value: TagInfo{models.TagLow, "⚠️ Low", "#6b7280"}},
	{Above: math.Inf(-1), Value: TagInfo{models.TagPoor, "❌ Poor", "#6b7280"}},
}

// KeywordTrends classifies keyword impact, highest class first
var KeywordTrends = Table[TrendInfo]{
	{Above: 700000, Value: TrendInfo{models.TrendExplosive, "🚀"}},
	{Above: 400000, Value: TrendInfo{models.TrendRising, "📈"}},
	{Above: 200000, Value: TrendInfo{models.TrendSteady, "➖"}},
	{Above: 100000, Value: TrendInfo{models.TrendCooling, "📉"}},
	{Above: math.Inf(-1), Value: TrendInfo{models.TrendIrrelevant, "❌"}},
}

// ClassifyVideo returns the tier for a views-per-day score
func ClassifyVideo(viewsPerDay float64) TagInfo {
	return VideoTags.Lookup(math.Round(viewsPerDay))
}

// ClassifyKeyword returns the trend class for a keyword impact
func ClassifyKeyword(impact int64) TrendInfo {
	return KeywordTrends.Lookup(float64(impact))
}

// TagRank is the position of tag in VideoTags, 0 being the highest tier.
// Unknown tags rank below every tier.
func TagRank(tag models.Tag) int {
	for i, th := range VideoTags {
		if th.Value.Tag == tag {
			return i
		}
	}
	return len(VideoTags)
}

// IsHighPotential reports whether tag is within the top tiers
func IsHighPotential(tag models.Tag, tiers int) bool {
	return TagRank(tag) < tiers
}
