package videoinsights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"video-insights/agents/video-insights/youtube"
	"video-insights/internal/models"
	"video-insights/shared/ai"
	"video-insights/shared/config"
	"video-insights/shared/email"
	"video-insights/shared/insights"
	"video-insights/shared/logging"
	"video-insights/shared/monitoring"
	"video-insights/shared/scheduler"
	"video-insights/shared/sheets"
	"video-insights/shared/storage"
)

const (
	videoSourceName   = "videos"
	keywordSourceName = "keywords"
)

// RefreshMetrics describes one refresh run
type RefreshMetrics struct {
	Videos       int
	Keywords     int
	TooShort     int
	InvalidDates int
	Briefs       int
	DigestSent   bool
}

func (m RefreshMetrics) GetSummary() string {
	return fmt.Sprintf("published %d videos (%d too short, %d undated), %d keywords",
		m.Videos, m.TooShort, m.InvalidDates, m.Keywords)
}

// Agent refreshes the dashboard from its two sources and serves it over HTTP.
// It implements scheduler.Agent.
type Agent struct {
	config *config.Config

	VideoSource   sheets.Source
	KeywordSource sheets.Source
	Briefer       *ai.Briefer
	EmailSender   *email.Sender
	Preferences   *storage.Preferences

	dashboard *Dashboard
	sessions  *SessionStore
	log       *logging.Logger
	now       func() time.Time
}

func NewAgent(cfg *config.Config) *Agent {
	pipeline := insights.NewPipeline(cfg.Insights.AllowedChannels, cfg.Insights.HighPotentialTiers)
	dashboard := NewDashboard(pipeline)

	return &Agent{
		config:    cfg,
		dashboard: dashboard,
		sessions:  NewSessionStore(dashboard, cfg.Insights.PageSize, cfg.Server.SessionTTL),
		log:       logging.Component("agent"),
		now:       time.Now,
	}
}

func (a *Agent) Name() string {
	return "Video Insights"
}

func (a *Agent) Dashboard() *Dashboard { return a.dashboard }

func (a *Agent) Sessions() *SessionStore { return a.sessions }

// Initialize wires every dependency that was not injected beforehand
func (a *Agent) Initialize(ctx context.Context) error {
	a.log.Info().Msgf("Initializing %s...", a.Name())

	if a.VideoSource == nil {
		src, err := a.newVideoSource(ctx)
		if err != nil {
			return err
		}
		a.VideoSource = src
	}

	if a.KeywordSource == nil {
		kw := a.config.Sources.Keywords
		a.KeywordSource = sheets.NewSheetSource(keywordSourceName, kw.URL, kw.Format, kw.Timeout)
	}

	if a.Preferences == nil {
		store, err := a.newPreferenceStore(ctx)
		if err != nil {
			return err
		}
		a.Preferences = storage.NewPreferences(store)
		a.log.Info().Str("backend", a.config.Preferences.Backend).Msg("preference store initialized")
	}

	// Briefs only reach readers through the digest
	if a.Briefer == nil && a.config.BriefsEnabled() && a.config.Email.Enabled {
		briefer, err := ai.NewBriefer(ctx, &a.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create script briefer: %w", err)
		}
		a.Briefer = briefer
		a.log.Info().Str("model", a.config.AI.Model).Msg("script briefer initialized")
	}

	if a.EmailSender == nil && a.config.Email.Enabled {
		a.EmailSender = email.NewSender(&a.config.Email)
		a.log.Info().Msg("email sender initialized")
	}

	return nil
}

func (a *Agent) newVideoSource(ctx context.Context) (sheets.Source, error) {
	v := a.config.Sources.Videos
	if v.Kind != "youtube" {
		return sheets.NewSheetSource(videoSourceName, v.URL, v.Format, v.Timeout), nil
	}

	src, err := youtube.NewSource(ctx, &a.config.YouTube)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube source: %w", err)
	}
	a.log.Info().Int("channels", len(a.config.YouTube.ChannelIDs)).Msg("YouTube source initialized")
	return src, nil
}

func (a *Agent) newPreferenceStore(ctx context.Context) (storage.Store, error) {
	p := a.config.Preferences
	if p.Backend == "redis" {
		store, err := storage.ConnectRedis(ctx, p.RedisAddr, p.RedisPassword, p.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create preference store: %w", err)
		}
		return store, nil
	}

	store, err := storage.NewFileStore(p.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create preference store: %w", err)
	}
	return store, nil
}

// RunOnce fetches both sources concurrently and publishes each result independently.
// It only fails when neither source could be loaded.
func (a *Agent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	// Each goroutine writes its own fields
	var (
		metrics              RefreshMetrics
		videoErr, keywordErr error
		wg                   sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		videoErr = a.refreshVideos(ctx, &metrics)
	}()
	go func() {
		defer wg.Done()
		keywordErr = a.refreshKeywords(ctx, &metrics)
	}()
	wg.Wait()

	if videoErr != nil && keywordErr != nil {
		return fmt.Errorf("all sources failed: %w", errors.Join(videoErr, keywordErr))
	}
	if events == nil {
		events = &scheduler.AgentEvents{}
	}

	if err := errors.Join(videoErr, keywordErr); err != nil && events.OnPartialFailure != nil {
		events.OnPartialFailure(err, time.Since(startTime))
	}

	if err := a.sendDigest(ctx, &metrics); err != nil {
		a.log.Warn().Err(err).Msg("digest not sent")
		if events.OnPartialFailure != nil {
			events.OnPartialFailure(err, time.Since(startTime))
		}
	}

	if removed := a.sessions.Cleanup(); removed > 0 {
		a.log.Debug().Int("removed", removed).Msg("expired view sessions")
	}

	a.log.Info().
		Int("videos", metrics.Videos).
		Int("keywords", metrics.Keywords).
		Int("too_short", metrics.TooShort).
		Int("undated", metrics.InvalidDates).
		Msg("refresh complete")

	if events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
	return nil
}

// refreshVideos publishes the built videos, or an empty collection when the fetch fails
func (a *Agent) refreshVideos(ctx context.Context, metrics *RefreshMetrics) error {
	gen := a.dashboard.NextGeneration()

	rows, err := a.VideoSource.Rows(ctx)
	if err != nil {
		monitoring.RecordRefresh(videoSourceName, 0, err)
		a.log.Error().Err(err).Str("source", videoSourceName).Msg("fetch failed, clearing videos")
		if !a.dashboard.ReplaceVideos(gen, nil) {
			monitoring.RecordStale(videoSourceName)
		}
		return fmt.Errorf("%s: %w", videoSourceName, err)
	}

	videos, report := insights.BuildVideos(rows, a.now(), insights.BuildOptions{
		MinDurationSeconds: a.config.Insights.MinDurationSeconds,
	})
	metrics.Videos = len(videos)
	metrics.TooShort = report.TooShort
	metrics.InvalidDates = len(report.InvalidDates)
	for _, id := range report.InvalidDates {
		a.log.Warn().Str("video_id", id).Msg("unparseable publish date, treating as published today")
	}

	if !a.dashboard.ReplaceVideos(gen, videos) {
		monitoring.RecordStale(videoSourceName)
		a.log.Info().Uint64("generation", gen).Msg("discarding stale video fetch")
		return nil
	}
	monitoring.RecordRefresh(videoSourceName, len(videos), nil)
	return nil
}

func (a *Agent) refreshKeywords(ctx context.Context, metrics *RefreshMetrics) error {
	gen := a.dashboard.NextGeneration()

	rows, err := a.KeywordSource.Rows(ctx)
	if err != nil {
		monitoring.RecordRefresh(keywordSourceName, 0, err)
		a.log.Error().Err(err).Str("source", keywordSourceName).Msg("fetch failed, clearing keywords")
		if !a.dashboard.ReplaceKeywords(gen, nil) {
			monitoring.RecordStale(keywordSourceName)
		}
		return fmt.Errorf("%s: %w", keywordSourceName, err)
	}

	keywords := insights.BuildKeywords(rows, a.config.Insights.KeywordLimit)
	metrics.Keywords = len(keywords)

	if !a.dashboard.ReplaceKeywords(gen, keywords) {
		monitoring.RecordStale(keywordSourceName)
		a.log.Info().Uint64("generation", gen).Msg("discarding stale keyword fetch")
		return nil
	}
	monitoring.RecordRefresh(keywordSourceName, len(keywords), nil)
	return nil
}

func (a *Agent) sendDigest(ctx context.Context, metrics *RefreshMetrics) error {
	if a.EmailSender == nil {
		return nil
	}

	videos := a.dashboard.HighPotential(a.config.Email.MaxVideos)
	if len(videos) == 0 {
		a.log.Info().Msg("no high-potential videos, skipping digest")
		return nil
	}

	report := &models.DigestReport{
		Date:    a.now(),
		Videos:  videos,
		Briefs:  map[string]models.ScriptBrief{},
		Summary: a.dashboard.View(models.FilterState{}, 0).Summary,
	}
	if kw := a.dashboard.Keywords(""); len(kw) > 0 {
		report.Keywords = kw[:min(10, len(kw))]
	}

	if a.Briefer != nil {
		report.Briefs = a.Briefer.BriefAll(ctx, videos, a.config.AI.MaxBriefs)
		metrics.Briefs = len(report.Briefs)
	}

	if err := a.EmailSender.SendDigest(report); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	metrics.DigestSent = true
	a.log.Info().Int("videos", len(videos)).Int("briefs", metrics.Briefs).Msg("digest sent")
	return nil
}
