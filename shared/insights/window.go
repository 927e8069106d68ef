package insights

import "video-insights/internal/models"

// DefaultPageSize is both the initial window and the load-more increment
const DefaultPageSize = 18

// Window returns the first size records of videos
func Window(videos []models.VideoRecord, size int) []models.VideoRecord {
	if size <= 0 {
		return []models.VideoRecord{}
	}
	if size > len(videos) {
		size = len(videos)
	}
	return videos[:size:size]
}

// Pager tracks the visible window for one viewer. It is not safe for
// concurrent use; callers own the synchronization.
type Pager struct {
	initial    int
	step       int
	size       int
	state      models.FilterState
	lastSignal uint64
}

// NewPager creates a pager starting at initial records and growing by step
func NewPager(initial, step int) *Pager {
	if initial <= 0 {
		initial = DefaultPageSize
	}
	if step <= 0 {
		step = initial
	}
	return &Pager{initial: initial, step: step, size: initial}
}

// Size is the current window size
func (p *Pager) Size() int { return p.size }

// State is the filter state the window was built for
func (p *Pager) State() models.FilterState { return p.state }

// Reset shrinks the window back to its initial size
func (p *Pager) Reset() {
	p.size = p.initial
}

// SetState records a new filter state. The window resets when the state
// differs from the previous one; it reports whether that happened.
func (p *Pager) SetState(state models.FilterState) bool {
	if p.state.Equal(state) {
		return false
	}
	p.state = state
	p.Reset()
	return true
}

// Advance grows the window by one step for a load-more signal. Signals carry an
// increasing sequence number starting at 1; repeated or older numbers (and 0) are
// ignored, as is any signal once the window already covers total records.
func (p *Pager) Advance(signal uint64, total int) bool {
	if signal <= p.lastSignal {
		return false
	}
	p.lastSignal = signal
	if p.size >= total {
		return false
	}
	p.size += p.step
	return true
}

// Apply returns the current window over videos
func (p *Pager) Apply(videos []models.VideoRecord) []models.VideoRecord {
	return Window(videos, p.size)
}
