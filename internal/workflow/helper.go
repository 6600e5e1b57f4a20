package workflow

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// SetupLogger builds the tint-backed logger used by every command.
// Unknown levels fall back to info. Colors are dropped when stderr is not a terminal.
func SetupLogger(level string, bundleID string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		logLevel = slog.LevelInfo
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.DateTime,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	logger := slog.New(handler).With("service", "updatesentry")
	if bundleID != "" {
		logger = logger.With("bundle_id", bundleID)
	}
	return logger
}
