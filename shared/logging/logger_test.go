package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Service: "video-insights", Writer: &buf})

	Component("sheets").Info().Str("source", "videos").Msg("fetched")
	Get().Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, `"service":"video-insights"`)
	assert.Contains(t, out, `"component":"sheets"`)
	assert.Contains(t, out, `"message":"fetched"`)
	assert.NotContains(t, out, "hidden")
}
