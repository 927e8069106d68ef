package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	videoinsights "video-insights/agents/video-insights"
	"video-insights/shared/config"
	"video-insights/shared/logging"
	"video-insights/shared/monitoring"
	"video-insights/shared/scheduler"
)

func main() {
	once := flag.Bool("once", false, "refresh both sources once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: "video-insights",
	})
	log := logging.Get()

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agent := videoinsights.NewAgent(cfg)
	if err := agent.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize agent")
	}
	defer agent.Preferences.Close()

	monitor := monitoring.NewMonitor()
	s := scheduler.New(cfg.Schedule, agent, monitor)

	if *once {
		log.Info().Msg("Running once...")
		if err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Run failed")
			os.Exit(1)
		}
		return
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           videoinsights.NewServer(agent, monitor).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	log.Info().Msg("Starting scheduler...")
	if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Scheduler failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
