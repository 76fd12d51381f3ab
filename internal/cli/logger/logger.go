package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jemtv/storyfeed/internal/config"
)

// Initialize builds the process default logger from configuration. The
// returned closer is non-nil when the sink is a regular file.
func Initialize() (io.Closer, error) {
	w, closer, err := parseLogFile(config.Opts.LogFile())
	if err != nil {
		return nil, err
	}

	h := parseFormat(w, config.Opts.LogFormat(), config.Opts.LogLevel(),
		config.Opts.LogDateTime())
	slog.SetDefault(slog.New(h))
	return closer, nil
}

func parseLogFile(logFile string) (io.Writer, io.Closer, error) {
	switch logFile {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"logger: unable to open log file %q: %w", logFile, err)
	}
	return f, f, nil
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	switch s {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return level
}

func hideTime(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

func parseFormat(w io.Writer, format, level string, logTime bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if !logTime {
		opts.ReplaceAttr = hideTime
	}

	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
