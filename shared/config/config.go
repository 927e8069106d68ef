package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Schedule    string            `yaml:"schedule" validate:"required"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Sources     SourcesConfig     `yaml:"sources"`
	YouTube     YouTubeConfig     `yaml:"youtube"`
	Insights    InsightsConfig    `yaml:"insights"`
	Preferences PreferencesConfig `yaml:"preferences"`
	AI          AIConfig          `yaml:"ai"`
	Email       EmailConfig       `yaml:"email"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr" validate:"required"`
	CORSOrigins []string      `yaml:"cors_origins"`
	SessionTTL  time.Duration `yaml:"session_ttl" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" env:"LOG_FORMAT" validate:"omitempty,oneof=console json"`
}

type SourcesConfig struct {
	Videos   SourceConfig `yaml:"videos"`
	Keywords SourceConfig `yaml:"keywords"`
}

// SourceConfig describes one remote dataset. Kind "youtube" is only valid for videos.
type SourceConfig struct {
	Kind    string        `yaml:"kind" validate:"oneof=sheet youtube"`
	URL     string        `yaml:"url" validate:"required_if=Kind sheet,omitempty,url"`
	Format  string        `yaml:"format" validate:"omitempty,oneof=xlsx csv json"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type YouTubeConfig struct {
	APIKey        string   `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID      string   `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret  string   `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile     string   `yaml:"token_file"`
	ChannelIDs    []string `yaml:"channel_ids"`
	MaxPerChannel int64    `yaml:"max_per_channel" validate:"gte=0,lte=50"`
}

type InsightsConfig struct {
	MinDurationSeconds int      `yaml:"min_duration_seconds" validate:"gte=0"`
	KeywordLimit       int      `yaml:"keyword_limit" validate:"gt=0"`
	PageSize           int      `yaml:"page_size" validate:"gt=0"`
	HighPotentialTiers int      `yaml:"high_potential_tiers" validate:"gte=1,lte=7"`
	AllowedChannels    []string `yaml:"allowed_channels"`
}

type PreferencesConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=file redis"`
	FilePath      string `yaml:"file_path" validate:"required_if=Backend file"`
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisKey      string `yaml:"redis_key"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
	MaxBriefs    int    `yaml:"max_briefs" validate:"gte=0"`
}

type EmailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SMTPServer string `yaml:"smtp_server" validate:"required_if=Enabled true"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email" validate:"omitempty,email"`
	ToEmail    string `yaml:"to_email" validate:"omitempty,email"`
	MaxVideos  int    `yaml:"max_videos" validate:"gte=0"`
}

// Load reads CONFIG_FILE (default config.yaml), applies env fallbacks and defaults, then validates
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return Parse(data)
}

// Parse builds a validated Config from YAML bytes
func Parse(data []byte) (*Config, error) {
	// Seeded before decoding so an explicit 0 survives and disables the filter
	cfg := Config{Insights: InsightsConfig{MinDurationSeconds: 60}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	fallback := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fallback(&c.Logging.Level, "LOG_LEVEL")
	fallback(&c.Logging.Format, "LOG_FORMAT")
	fallback(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	fallback(&c.YouTube.ClientID, "GOOGLE_CLIENT_ID")
	fallback(&c.YouTube.ClientSecret, "GOOGLE_CLIENT_SECRET")
	fallback(&c.Preferences.RedisPassword, "REDIS_PASSWORD")
	fallback(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")
	fallback(&c.Email.Username, "EMAIL_USERNAME")
	fallback(&c.Email.Password, "EMAIL_PASSWORD")
}

func (c *Config) applyDefaults() {
	if c.Schedule == "" {
		c.Schedule = "0 0 * * * *" // Hourly, seconds field first
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = 2 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	for _, src := range []*SourceConfig{&c.Sources.Videos, &c.Sources.Keywords} {
		if src.Kind == "" {
			src.Kind = "sheet"
		}
		if src.Timeout == 0 {
			src.Timeout = 30 * time.Second
		}
	}

	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.MaxPerChannel == 0 {
		c.YouTube.MaxPerChannel = 10
	}

	if c.Insights.KeywordLimit == 0 {
		c.Insights.KeywordLimit = 100
	}
	if c.Insights.PageSize == 0 {
		c.Insights.PageSize = 18
	}
	if c.Insights.HighPotentialTiers == 0 {
		c.Insights.HighPotentialTiers = 2
	}

	if c.Preferences.Backend == "" {
		c.Preferences.Backend = "file"
	}
	if c.Preferences.FilePath == "" {
		c.Preferences.FilePath = "data/preferences.json"
	}
	if c.Preferences.RedisKey == "" {
		c.Preferences.RedisKey = "video-insights:preferences"
	}

	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.MaxBriefs == 0 {
		c.AI.MaxBriefs = 3
	}

	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.MaxVideos == 0 {
		c.Email.MaxVideos = 10
	}
}

func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Sources.Keywords.Kind != "sheet" {
		return fmt.Errorf("keyword source must be a sheet (sources.keywords.kind)")
	}
	if c.Sources.Videos.Kind == "youtube" {
		if len(c.YouTube.ChannelIDs) == 0 {
			return fmt.Errorf("youtube video source needs at least one channel (youtube.channel_ids)")
		}
		if c.YouTube.APIKey == "" && (c.YouTube.ClientID == "" || c.YouTube.ClientSecret == "") {
			return fmt.Errorf("youtube video source needs an API key (YOUTUBE_API_KEY) or OAuth client credentials")
		}
	}
	if c.Email.Enabled && (c.Email.Username == "" || c.Email.Password == "") {
		return fmt.Errorf("email digest requires credentials (set EMAIL_USERNAME and EMAIL_PASSWORD)")
	}
	return nil
}

// BriefsEnabled reports whether Gemini script briefs can be generated
func (c *Config) BriefsEnabled() bool {
	return c.AI.GeminiAPIKey != "" && c.AI.MaxBriefs > 0
}
