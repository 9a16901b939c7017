// Package logging configures the process-wide slog logger: human-readable
// output on stderr, optionally fanned out to a rotating log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ariel-frischer/relver/internal/git"
)

// Options configures Setup.
type Options struct {
	Level string
	// Debug forces debug level and enables git debug output.
	Debug bool

	// File enables the rotating file handler when non-empty.
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Setup builds the logger, installs it as the slog default and returns it.
// The returned closer flushes the log file, if any.
func Setup(stderr io.Writer, opts Options) (*slog.Logger, io.Closer) {
	level := ParseLevel(opts.Level, slog.LevelWarn)
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}

	var closer io.Closer = nopCloser{}
	if strings.TrimSpace(opts.File) != "" {
		w := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		// The file always records at least info, whatever stderr shows.
		fileLevel := min(level, slog.LevelInfo)
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     fileLevel,
		}))
		closer = w
	}

	logger := slog.New(slogmulti.Fanout(handlers...))
	slog.SetDefault(logger)

	if opts.Debug {
		git.SetDebugLogger(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		})
	} else {
		git.SetDebugLogger(nil)
	}

	return logger, closer
}

// ParseLevel maps a level name or numeric slog level to slog.Level.
func ParseLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
