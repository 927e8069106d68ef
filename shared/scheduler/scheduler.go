package scheduler

import (
	"context"
	"fmt"
	"time"

	"video-insights/shared/logging"
	"video-insights/shared/monitoring"

	"github.com/robfig/cron/v3"
)

// Metrics defines the common interface for agent metrics
type Metrics interface {
	// GetSummary returns a human-readable summary of the run
	GetSummary() string
}

// AgentEvents provides callbacks for monitoring agent execution
type AgentEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

// Agent defines the interface that all agents must implement
type Agent interface {
	Name() string
	RunOnce(ctx context.Context, events *AgentEvents) error
	Initialize(ctx context.Context) error
}

// Scheduler runs an agent once at startup and then on a cron schedule
type Scheduler struct {
	schedule string
	monitor  *monitoring.Monitor
	agent    Agent
	cron     *cron.Cron
	log      *logging.Logger
}

func New(schedule string, agent Agent, monitor *monitoring.Monitor) *Scheduler {
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}

	return &Scheduler{
		schedule: schedule,
		monitor:  monitor,
		agent:    agent,
		// Prevent overlapping runs
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		log:  logging.Component("scheduler"),
	}
}

// Start blocks until ctx is cancelled. The agent must already be initialized.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Error().Err(err).Str("agent", s.agent.Name()).Msg("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	// The dashboard should not sit empty until the first tick
	go func() {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Error().Err(err).Str("agent", s.agent.Name()).Msg("startup run failed")
		}
	}()

	s.log.Info().Str("agent", s.agent.Name()).Str("schedule", s.schedule).Msg("scheduler started")
	s.cron.Start()

	<-ctx.Done()
	s.log.Info().Str("agent", s.agent.Name()).Msg("scheduler stopped")
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	agentName := s.agent.Name()

	s.log.Info().Str("agent", agentName).Msg("starting run")

	events := &AgentEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			s.monitor.RecordSuccess(metrics.GetSummary(), duration)
		},
		OnPartialFailure: func(err error, duration time.Duration) {
			s.monitor.RecordPartialFailure(fmt.Errorf("%s partial failure: %w", agentName, err), duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s critical failure: %w", agentName, err), duration)
		},
	}

	if err := s.agent.RunOnce(ctx, events); err != nil {
		duration := time.Since(startTime)
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s failed: %w", agentName, err), duration)
		return fmt.Errorf("%s run failed: %w", agentName, err)
	}

	return nil
}

func (s *Scheduler) Monitor() *monitoring.Monitor {
	return s.monitor
}
