package videoinsights

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"video-insights/internal/models"
	"video-insights/shared/logging"
	"video-insights/shared/monitoring"
	"video-insights/shared/storage"
)

const dateLayout = "2006-01-02"

// maxWindowSize caps the size query parameter
const maxWindowSize = 1000

// apiRequestsPerMinute is the per-IP budget for /api routes
const apiRequestsPerMinute = 600

var errBadRequest = errors.New("bad request")

// filterRequest is the wire form of a FilterState; dates are calendar days
type filterRequest struct {
	Category string `json:"category"`
	Sort     string `json:"sort"`
	Title    string `json:"title"`
	Keyword  string `json:"keyword"`
	Duration string `json:"duration"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

func (f filterRequest) state() (models.FilterState, error) {
	state := models.FilterState{
		Category: models.Category(strings.TrimSpace(f.Category)),
		Sort:     models.SortKey(strings.TrimSpace(f.Sort)),
		Title:    strings.TrimSpace(f.Title),
		Keyword:  strings.TrimSpace(f.Keyword),
		Duration: models.DurationBucket(strings.TrimSpace(f.Duration)),
	}

	var err error
	if state.Start, err = parseDay(f.Start); err != nil {
		return models.FilterState{}, err
	}
	if state.End, err = parseDay(f.End); err != nil {
		return models.FilterState{}, err
	}
	return state, nil
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.Join(errBadRequest, err)
	}
	return t, nil
}

// Server exposes the dashboard over HTTP
type Server struct {
	dashboard *Dashboard
	sessions  *SessionStore
	prefs     *storage.Preferences
	monitor   *monitoring.Monitor
	validate  *validator.Validate
	pageSize  int
	origins   []string
	log       *logging.Logger
}

func NewServer(agent *Agent, monitor *monitoring.Monitor) *Server {
	origins := agent.config.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		dashboard: agent.dashboard,
		sessions:  agent.sessions,
		prefs:     agent.Preferences,
		monitor:   monitor,
		validate:  validator.New(),
		pageSize:  agent.config.Insights.PageSize,
		origins:   origins,
		log:       logging.Component("api"),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.countRequests)

	r.Get("/health", monitoring.HealthHandler(s.monitor))
	r.Get("/status", monitoring.StatusHandler(s.monitor))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(apiRequestsPerMinute, time.Minute))

		r.Get("/videos", s.handleVideos)
		r.Get("/summary", s.handleSummary)
		r.Get("/keywords", s.handleKeywords)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/filters", s.handleSetFilters)
			r.Post("/more", s.handleMore)
		})

		r.Get("/preferences/theme", s.handleGetTheme)
		r.Post("/preferences/theme/toggle", s.handleToggleTheme)
	})

	return r
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		monitoring.RecordRequest(route, strconv.Itoa(ww.Status()))
	})
}

// filterFromQuery reads a FilterState from query parameters and validates it
func (s *Server) filterFromQuery(r *http.Request) (models.FilterState, error) {
	q := r.URL.Query()
	state, err := filterRequest{
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Title:    q.Get("title"),
		Keyword:  q.Get("keyword"),
		Duration: q.Get("duration"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
	}.state()
	if err != nil {
		return models.FilterState{}, err
	}
	return state, s.check(state)
}

func (s *Server) check(state models.FilterState) error {
	if err := s.validate.Struct(state); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func (s *Server) sizeFromQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("size")
	if raw == "" {
		return s.pageSize, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < 0 || size > maxWindowSize {
		return 0, errors.Join(errBadRequest, errors.New("size must be an integer between 0 and 1000"))
	}
	return size, nil
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	state, err := s.filterFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	size, err := s.sizeFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.dashboard.View(state, size))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	state, err := s.filterFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.dashboard.View(state, 0).Summary)
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		q = r.URL.Query().Get("keyword")
	}
	if len(q) > 200 {
		s.respondError(w, errors.Join(errBadRequest, errors.New("keyword query too long")))
		return
	}
	keywords := s.dashboard.Keywords(q)
	respondJSON(w, http.StatusOK, map[string]any{
		"keywords": keywords,
		"total":    len(keywords),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusCreated, s.sessions.Create())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Join(errBadRequest, err))
		return
	}
	state, err := req.state()
	if err == nil {
		err = s.check(state)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	view, err := s.sessions.SetFilters(chi.URLParam(r, "id"), state)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// handleMore applies a load-more signal. Signals are numbered from 1 and must increase
// per session. A 0 or missing signal is a bad request.
func (s *Server) handleMore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Signal uint64 `json:"signal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Join(errBadRequest, err))
		return
	}
	if req.Signal == 0 {
		s.respondError(w, errors.Join(errBadRequest, errors.New("signal must start at 1")))
		return
	}

	view, err := s.sessions.More(chi.URLParam(r, "id"), req.Signal)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	dark, err := s.prefs.DarkMode(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"dark": dark})
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	dark, err := s.prefs.ToggleDarkMode(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"dark": dark})
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	default:
		s.log.Error().Err(err).Msg("request failed")
	}

	msg := err.Error()
	if status == http.StatusBadRequest {
		msg = strings.TrimPrefix(msg, errBadRequest.Error()+"\n")
	}
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Component("api").Error().Err(err).Msg("failed to encode response")
	}
}
