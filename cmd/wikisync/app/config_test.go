package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "data", config.DataDir)
	assert.NotNil(t, config.Settings)
	assert.NoError(t, config.Settings.Validate())
}

func TestDetermineLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"both prefers quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit wins", Config{LogLevel: "trace", Verbose: true}, "trace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{LogLevel: "info"}
	config.UpdateFromFlags(true, false, true, "")

	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "info", config.LogLevel, "empty flag leaves configured level alone")
}
