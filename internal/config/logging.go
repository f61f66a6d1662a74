package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates the process logger: text to stderr and, when logFile
// is set, JSON appended to that file as well.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(stderr io.Writer, logFile string, level slog.Level) (*slog.Logger, func() error) {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	if logFile == "" {
		return slog.New(stderrHandler), func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fall back to stderr-only if file fails
		logger := slog.New(stderrHandler)
		logger.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	return fanoutLogger(stderrHandler, file, level), file.Close
}

// fanoutLogger sends every record to h and, as JSON, to file.
func fanoutLogger(h slog.Handler, file io.Writer, level slog.Level) *slog.Logger {
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(h, fileHandler))
}
