package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/wire"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

var LoggingSet = wire.NewSet(
	NewLogger,
)

// NewLogger builds the process logger. Level comes from GANTRY_LOG_LEVEL
// (the debug flag forces debug and adds source positions), format from
// GANTRY_LOG_FORMAT: text on stderr by default, json for log shippers.
func NewLogger(cfg *config.RuntimeConfig) *slog.Logger {
	level := slog.LevelInfo
	if val := os.Getenv("GANTRY_LOG_LEVEL"); val != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(val)); err == nil {
			level = parsed
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	if strings.EqualFold(os.Getenv("GANTRY_LOG_FORMAT"), "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		// Interactive runs do not need timestamps.
		if a.Key == slog.TimeKey && len(groups) == 0 {
			return slog.Attr{}
		}
		if a.Key == slog.SourceKey {
			if source, ok := a.Value.Any().(*slog.Source); ok {
				source.File = shortPath(source.File)
			}
		}
		return a
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// shortPath trims source positions down to the in-module path.
func shortPath(file string) string {
	if idx := strings.Index(file, "gantry-cli/"); idx != -1 {
		return file[idx+len("gantry-cli/"):]
	}
	if idx := strings.LastIndex(file, "/"); idx != -1 {
		return file[idx+1:]
	}
	return file
}
