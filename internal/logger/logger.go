package logger

import (
	"log/slog"
	"os"
)

// Init installs the process-wide slog default. Production gets JSON for
// log shipping; everything else gets human-readable text at debug level.
func Init(production bool) {
	var logger *slog.Logger

	if production {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	slog.SetDefault(logger)
}
