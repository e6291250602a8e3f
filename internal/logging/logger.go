package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithTurn returns a logger with turn context fields attached.
// Use this for all logging within a single conversation turn's fan-out.
func WithTurn(turnID, lane string) *slog.Logger {
	return slog.With(
		"turn_id", turnID,
		"lane", lane,
	)
}

// WithSource returns a logger scoped to one data source within a turn.
func WithSource(logger *slog.Logger, source string) *slog.Logger {
	return logger.With("source", source)
}
