package insights

import (
	"math"

	"video-insights/internal/models"
)

// Summarize aggregates a filtered collection. AvgViewsPerDay is the mean of
// each record's own score, not total views over count.
func Summarize(videos []models.VideoRecord, highPotentialTiers int) models.Summary {
	var s models.Summary
	if len(videos) == 0 {
		return s
	}

	var vpdSum float64
	for _, v := range videos {
		s.TotalViews += v.Views
		vpdSum += v.ViewsPerDay
		if IsHighPotential(v.Tag, highPotentialTiers) {
			s.HighPotentialCount++
		}
	}

	s.Count = len(videos)
	s.AvgViews = int64(math.Round(float64(s.TotalViews) / float64(s.Count)))
	s.AvgViewsPerDay = int64(math.Round(vpdSum / float64(s.Count)))

	return s
}
