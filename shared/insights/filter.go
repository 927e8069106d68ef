package insights

import (
	"sort"
	"time"

	"video-insights/internal/models"
)

// Duration bucket bounds in seconds: short [0,60), medium [60,600], long (600,∞)
const (
	ShortMaxSeconds  = 60
	MediumMaxSeconds = 600
)

// DefaultHighPotentialTiers counts "must script now" and "top" as high potential
const DefaultHighPotentialTiers = 2

// Predicate decides whether a record stays in the result
type Predicate func(models.VideoRecord) bool

// Pipeline filters and sorts enriched videos for a FilterState
type Pipeline struct {
	AllowedChannels    map[string]struct{}
	HighPotentialTiers int
}

// NewPipeline builds a pipeline with the given channel allow-list
func NewPipeline(channels []string, tiers int) Pipeline {
	allowed := make(map[string]struct{}, len(channels))
	for _, c := range channels {
		allowed[c] = struct{}{}
	}
	if tiers <= 0 {
		tiers = DefaultHighPotentialTiers
	}
	return Pipeline{AllowedChannels: allowed, HighPotentialTiers: tiers}
}

// Predicates returns the active filters for state, in evaluation order
func (p Pipeline) Predicates(state models.FilterState) []Predicate {
	var preds []Predicate

	if state.Title != "" {
		needle := fold(state.Title)
		preds = append(preds, func(v models.VideoRecord) bool {
			return containsFoldNeedle(v.Title, needle)
		})
	}

	switch state.Category {
	case models.CategoryPopular:
		preds = append(preds, func(v models.VideoRecord) bool {
			return IsHighPotential(v.Tag, p.HighPotentialTiers)
		})
	case models.CategoryChannels:
		preds = append(preds, func(v models.VideoRecord) bool {
			_, ok := p.AllowedChannels[v.ChannelID]
			return ok
		})
	}

	if state.Duration != models.DurationAny {
		bucket := state.Duration
		preds = append(preds, func(v models.VideoRecord) bool {
			return InBucket(v.DurationSeconds, bucket)
		})
	}

	if !state.Start.IsZero() || !state.End.IsZero() {
		start, end := state.Start, state.End
		preds = append(preds, func(v models.VideoRecord) bool {
			return InDateRange(v, start, end)
		})
	}

	return preds
}

// Apply returns the records matching every active predicate, ordered by the
// selected sort key. The input slice is never modified.
func (p Pipeline) Apply(videos []models.VideoRecord, state models.FilterState) []models.VideoRecord {
	preds := p.Predicates(state)

	out := make([]models.VideoRecord, 0, len(videos))
next:
	for _, v := range videos {
		for _, pred := range preds {
			if !pred(v) {
				continue next
			}
		}
		out = append(out, v)
	}

	if less := comparator(state.Sort); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func comparator(key models.SortKey) func(a, b models.VideoRecord) bool {
	switch key {
	case models.SortViews:
		return func(a, b models.VideoRecord) bool { return a.Views > b.Views }
	case models.SortLikes:
		return func(a, b models.VideoRecord) bool { return a.Likes > b.Likes }
	case models.SortComments:
		return func(a, b models.VideoRecord) bool { return a.Comments > b.Comments }
	case models.SortRecent:
		// invalid dates have a zero PublishedAt and sink to the end
		return func(a, b models.VideoRecord) bool { return a.PublishedAt.After(b.PublishedAt) }
	default:
		return nil
	}
}

// InBucket reports whether seconds falls into bucket
func InBucket(seconds int, bucket models.DurationBucket) bool {
	switch bucket {
	case models.DurationShort:
		return seconds < ShortMaxSeconds
	case models.DurationMedium:
		return seconds >= ShortMaxSeconds && seconds <= MediumMaxSeconds
	case models.DurationLong:
		return seconds > MediumMaxSeconds
	default:
		return true
	}
}

// InDateRange checks publication against inclusive day bounds. The end bound
// covers its whole day. Records without a valid date never match a bound.
func InDateRange(v models.VideoRecord, start, end time.Time) bool {
	if !v.PublishedValid {
		return false
	}
	if !start.IsZero() && v.PublishedAt.Before(start) {
		return false
	}
	if !end.IsZero() && !v.PublishedAt.Before(end.Add(day)) {
		return false
	}
	return true
}

// FilterKeywords keeps keywords containing query, ignoring case
func FilterKeywords(keywords []models.KeywordRecord, query string) []models.KeywordRecord {
	needle := NormalizeKeyword(query)
	out := make([]models.KeywordRecord, 0, len(keywords))
	for _, k := range keywords {
		if needle == "" || containsFoldNeedle(k.Keyword, needle) {
			out = append(out, k)
		}
	}
	return out
}
