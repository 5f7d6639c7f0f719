package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{" WARNING ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"", zerolog.NoLevel, false},
		{"loud", zerolog.NoLevel, false},
	}
	for _, tc := range testCases {
		got, ok := ParseLevel(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestNew_LevelAndEnvOverride(t *testing.T) {
	t.Setenv(EnvLogNoColor, "true")

	var buf bytes.Buffer
	l := New(&buf, "fekomat", "warn")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "app=fekomat")

	t.Setenv(EnvLogLevel, "debug")
	buf.Reset()
	l = New(&buf, "fekomat", "warn")
	l.Debug().Msg("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
