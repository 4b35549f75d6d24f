package library

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything needed to open a LibraryManager.
type Config struct {
	Driver   string
	DBPath   string
	LogLevel slog.Level
}

// DefaultConfig is used when no environment overrides are present.
func DefaultConfig() Config {
	return Config{
		Driver:   DriverCGO,
		DBPath:   "library.db",
		LogLevel: slog.LevelWarn,
	}
}

// LoadConfig reads an optional .env file from the working directory and then
// LIBRARY_DB_DRIVER, LIBRARY_DB and LIBRARY_LOG_LEVEL from the environment.
// Variables already set in the environment win over .env entries.
func LoadConfig() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	def := DefaultConfig()
	cfg := Config{
		Driver: withDefault(os.Getenv("LIBRARY_DB_DRIVER"), def.Driver),
		DBPath: withDefault(os.Getenv("LIBRARY_DB"), def.DBPath),
	}

	if cfg.Driver != DriverCGO && cfg.Driver != DriverPureGo {
		return Config{}, fmt.Errorf("LIBRARY_DB_DRIVER must be %q or %q, got %q", DriverCGO, DriverPureGo, cfg.Driver)
	}

	level := withDefault(os.Getenv("LIBRARY_LOG_LEVEL"), def.LogLevel.String())
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return Config{}, fmt.Errorf("LIBRARY_LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
