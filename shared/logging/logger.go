// Package logging provides the zerolog root logger shared by every component
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger
type Options struct {
	Level   string
	Format  string
	Service string
	Writer  io.Writer
}

// FromEnv reads LOG_LEVEL and LOG_FORMAT, defaulting to info/console
func FromEnv() Options {
	opt := Options{
		Level:  strings.ToLower(os.Getenv("LOG_LEVEL")),
		Format: strings.ToLower(os.Getenv("LOG_FORMAT")),
	}
	if opt.Level == "" {
		opt.Level = "info"
	}
	if opt.Format == "" {
		opt.Format = "console"
	}
	return opt
}

var (
	mu   sync.Mutex
	root atomic.Pointer[zerolog.Logger]
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Get returns the root logger, initializing it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Init (re)builds the root logger
func Init(opt Options) {
	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}

	l := ctx.Logger()
	root.Store(&l)
}

// Component returns a child logger tagged with a component name
func Component(name string) *Logger {
	l := Get().With().Str("component", name).Logger()
	return &l
}

// ParseLevel maps a level name to zerolog, defaulting to info
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
