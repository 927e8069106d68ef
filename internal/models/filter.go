package models

import "time"

// Category narrows the video grid to a named bucket
type Category string

const (
	CategoryAll      Category = ""
	CategoryPopular  Category = "popular"
	CategoryChannels Category = "channels"
)

// SortKey selects the single active comparator
type SortKey string

const (
	SortNone     SortKey = ""
	SortViews    SortKey = "views"
	SortLikes    SortKey = "likes"
	SortComments SortKey = "comments"
	SortRecent   SortKey = "recent"
)

// DurationBucket is a non-overlapping duration range
type DurationBucket string

const (
	DurationAny    DurationBucket = ""
	DurationShort  DurationBucket = "short"
	DurationMedium DurationBucket = "medium"
	DurationLong   DurationBucket = "long"
)

// FilterState is the viewer's current selection. It is replaced as a whole, never mutated.
// Start and End are calendar days; the zero time means unbounded.
type FilterState struct {
	Category Category       `json:"category" validate:"omitempty,oneof=popular channels"`
	Sort     SortKey        `json:"sort" validate:"omitempty,oneof=views likes comments recent"`
	Title    string         `json:"title" validate:"max=200"`
	Keyword  string         `json:"keyword" validate:"max=200"`
	Duration DurationBucket `json:"duration" validate:"omitempty,oneof=short medium long"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
}

// Equal reports whether two states select the same records in the same order
func (f FilterState) Equal(o FilterState) bool {
	return f.Category == o.Category &&
		f.Sort == o.Sort &&
		f.Title == o.Title &&
		f.Keyword == o.Keyword &&
		f.Duration == o.Duration &&
		f.Start.Equal(o.Start) &&
		f.End.Equal(o.End)
}

// Summary holds the aggregate figures of a filtered collection
type Summary struct {
	Count              int   `json:"count"`
	TotalViews         int64 `json:"total_views"`
	AvgViews           int64 `json:"avg_views"`
	AvgViewsPerDay     int64 `json:"avg_views_per_day"`
	HighPotentialCount int   `json:"high_potential_count"`
}
