package videoinsights

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"video-insights/internal/models"
	"video-insights/shared/insights"
)

var ErrSessionNotFound = errors.New("session not found")

// session is one viewer's selection and load-more window
type session struct {
	mu         sync.Mutex
	pager      *insights.Pager
	generation uint64
	lastSeen   time.Time
}

// SessionView is what a viewer sees for their session
type SessionView struct {
	ID     string             `json:"id"`
	Filter models.FilterState `json:"filter"`
	VideoView
}

// SessionStore keeps viewer sessions in memory. A session's filters and window reset
// when the video collection is replaced.
type SessionStore struct {
	dashboard *Dashboard
	pageSize  int
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionStore(dashboard *Dashboard, pageSize int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		dashboard: dashboard,
		pageSize:  pageSize,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

func (s *SessionStore) Create() SessionView {
	sess := &session{
		pager:      insights.NewPager(s.pageSize, s.pageSize),
		generation: s.dashboard.VideoGeneration(),
		lastSeen:   s.now(),
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.render(id, sess)
}

func (s *SessionStore) Get(id string) (SessionView, error) {
	return s.with(id, func(*session) {})
}

// SetFilters replaces the session's FilterState; a changed state shrinks the window back
func (s *SessionStore) SetFilters(id string, state models.FilterState) (SessionView, error) {
	return s.with(id, func(sess *session) {
		sess.pager.SetState(state)
	})
}

// More grows the window for a load-more signal. Duplicate or stale signals are no-ops.
func (s *SessionStore) More(id string, signal uint64) (SessionView, error) {
	return s.with(id, func(sess *session) {
		filtered, _ := s.dashboard.Filtered(sess.pager.State())
		sess.pager.Advance(signal, len(filtered))
	})
}

// Delete removes a session; unknown ids are ignored
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Cleanup drops sessions idle for longer than the TTL and returns how many were removed
func (s *SessionStore) Cleanup() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) with(id string, fn func(*session)) (SessionView, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.lastSeen = s.now()
	if gen := s.dashboard.VideoGeneration(); gen != sess.generation {
		sess.generation = gen
		sess.pager.SetState(models.FilterState{})
		sess.pager.Reset()
	}

	fn(sess)
	return s.render(id, sess), nil
}

func (s *SessionStore) render(id string, sess *session) SessionView {
	filtered, gen := s.dashboard.Filtered(sess.pager.State())
	return SessionView{
		ID:        id,
		Filter:    sess.pager.State(),
		VideoView: s.dashboard.view(filtered, gen, sess.pager.Size()),
	}
}
