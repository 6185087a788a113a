// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package logging builds the process-wide structured logger.
//
// Records are JSON lines on stdout. When a log file is configured the same
// records are also written to a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the optional log file.
const (
	maxFileSizeMB  = 100
	maxFileBackups = 3
	maxFileAgeDays = 28
)

// Options controls the logger produced by [New].
type Options struct {
	App   string
	Level string
	Debug bool
	File  string
}

/*
New creates a JSON [slog.Logger] tagged with the application name.

Parameters:
  - options: Options

Returns:
  - *slog.Logger: The configured logger
  - io.Closer: Closes the rotating file sink (a no-op without one)
  - error: If the log directory cannot be created
*/
func New(options Options) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(options.Level)
	if options.Debug {
		level = slog.LevelDebug
	}

	var (
		writer io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)

	if options.File != "" {
		if err := os.MkdirAll(filepath.Dir(options.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: create log directory: %w", err)
		}
		fileSink := &lumberjack.Logger{
			Filename:   options.File,
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxFileBackups,
			MaxAge:     maxFileAgeDays,
			Compress:   true,
		}
		writer = io.MultiWriter(os.Stdout, fileSink)
		closer = fileSink
	}

	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", options.App))

	return logger, closer, nil
}

// ParseLevel maps a LOG_LEVEL value onto a [slog.Level]. Unknown values mean info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record. Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
