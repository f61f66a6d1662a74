// Package config loads runtime settings from the environment and builds
// the process logger.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values.
type Config struct {
	// Store
	DBPath string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Planning rules (CUE file; empty uses built-in defaults)
	RulesFile string

	// Annotation write-back
	WriteConcurrency int
	WriteRate        float64 // writes per second, 0 = unlimited
	WriteRetries     int
}

// Load reads configuration from environment variables.
// Malformed numbers fall back to the default.
func Load() Config {
	return Config{
		DBPath: getEnv("SCRIPTPLAN_DB", "scriptplan.db"),

		LogFile:  getEnv("SCRIPTPLAN_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("SCRIPTPLAN_LOG_LEVEL", "INFO")),

		RulesFile: getEnv("SCRIPTPLAN_RULES", ""),

		WriteConcurrency: max(1, getInt("SCRIPTPLAN_WRITE_CONCURRENCY", 4)),
		WriteRate:        max(0, getFloat("SCRIPTPLAN_WRITE_RATE", 0)),
		WriteRetries:     max(0, getInt("SCRIPTPLAN_WRITE_RETRIES", 3)),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func getFloat(key string, defaultVal float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
