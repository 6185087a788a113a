// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package logging_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/platform/logging"
)

/*
TestParseLevel covers the accepted LOG_LEVEL spellings.
*/
func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, logging.ParseLevel(tt.input), tt.input)
	}
}

/*
TestNew_FileSink verifies that records reach the rotating file.
*/
func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gateway.log")

	logger, closer, err := logging.New(logging.Options{App: "autocare-test", Level: "info", File: path})
	require.NoError(t, err)

	logger.Info("session_initialized", slog.Bool("authenticated", false))
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"session_initialized"`)
	assert.Contains(t, string(content), `"app":"autocare-test"`)
}

/*
TestNew_DebugOverridesLevel ensures DEBUG wins over LOG_LEVEL.
*/
func TestNew_DebugOverridesLevel(t *testing.T) {
	logger, closer, err := logging.New(logging.Options{App: "x", Level: "error", Debug: true})
	require.NoError(t, err)
	defer closer.Close()

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
