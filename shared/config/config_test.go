package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
sources:
  videos:
    url: https://example.com/videos.xlsx
  keywords:
    url: https://example.com/keywords.xlsx
`

func TestParseDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "0 0 * * * *", cfg.Schedule)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Server.SessionTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "sheet", cfg.Sources.Videos.Kind)
	assert.Equal(t, 30*time.Second, cfg.Sources.Keywords.Timeout)
	assert.Equal(t, 60, cfg.Insights.MinDurationSeconds)
	assert.Equal(t, 100, cfg.Insights.KeywordLimit)
	assert.Equal(t, 18, cfg.Insights.PageSize)
	assert.Equal(t, 2, cfg.Insights.HighPotentialTiers)
	assert.Equal(t, "file", cfg.Preferences.Backend)
	assert.Equal(t, "data/preferences.json", cfg.Preferences.FilePath)
	assert.False(t, cfg.BriefsEnabled())
}

func TestParseExplicitValues(t *testing.T) {
	cfg, err := Parse([]byte(`
schedule: "0 */30 * * * *"
server:
  addr: ":9090"
  cors_origins: ["http://localhost:3000"]
sources:
  videos:
    url: https://example.com/videos.csv
    format: csv
    timeout: 5s
  keywords:
    url: https://example.com/keywords.json
insights:
  min_duration_seconds: 0
  allowed_channels: [UCaCoS1ylN81PAgotBDyKgug]
`))
	require.NoError(t, err)

	assert.Equal(t, "0 */30 * * * *", cfg.Schedule)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "csv", cfg.Sources.Videos.Format)
	assert.Equal(t, 5*time.Second, cfg.Sources.Videos.Timeout)
	assert.Equal(t, 0, cfg.Insights.MinDurationSeconds)
	assert.Equal(t, []string{"UCaCoS1ylN81PAgotBDyKgug"}, cfg.Insights.AllowedChannels)
}

func TestParseEnvFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "gem-key", cfg.AI.GeminiAPIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.BriefsEnabled())
}

func TestParseValidation(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("EMAIL_USERNAME", "")
	t.Setenv("EMAIL_PASSWORD", "")

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing keyword url",
			yaml: "sources:\n  videos:\n    url: https://example.com/v.xlsx\n",
			want: "URL",
		},
		{
			name: "bad format",
			yaml: minimalYAML + "    format: ods\n",
			want: "Format",
		},
		{
			name: "youtube without channels",
			yaml: "sources:\n  videos:\n    kind: youtube\n  keywords:\n    url: https://example.com/k.xlsx\n",
			want: "channel",
		},
		{
			name: "keyword source from youtube",
			yaml: "sources:\n  videos:\n    url: https://example.com/v.xlsx\n  keywords:\n    kind: youtube\n",
			want: "keyword source",
		},
		{
			name: "email without credentials",
			yaml: minimalYAML + "email:\n  enabled: true\n  smtp_server: smtp.example.com\n",
			want: "EMAIL_USERNAME",
		},
		{
			name: "bad log level",
			yaml: minimalYAML + "logging:\n  level: loud\n",
			want: "Level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/videos.xlsx", cfg.Sources.Videos.URL)

	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}
