package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("debug flag", func(t *testing.T) {
		t.Setenv(LevelEnv, "")
		log := NewLogger(&config.RuntimeConfig{Debug: true})
		assert.True(t, log.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("env level", func(t *testing.T) {
		t.Setenv(LevelEnv, "info")
		log := NewLogger(&config.RuntimeConfig{})
		assert.True(t, log.Enabled(ctx, slog.LevelInfo))
		assert.False(t, log.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("quiet by default", func(t *testing.T) {
		t.Setenv(LevelEnv, "")
		log := NewLogger(&config.RuntimeConfig{})
		assert.False(t, log.Enabled(ctx, slog.LevelInfo))
		assert.True(t, log.Enabled(ctx, slog.LevelWarn))
	})
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/usecase/runner.go", shortPath("/home/dev/v3ops/internal/usecase/runner.go"))
	assert.Equal(t, "main.go", shortPath("/home/dev/v3ops/cli/main.go"))
}
