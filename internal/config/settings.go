package config

import (
	"image/png"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Environment variables read by LoadSettings.
const (
	EnvLogLevel       = "LCI_LOG_LEVEL"
	EnvPNGCompression = "LCI_PNG_COMPRESSION"
	EnvWorkers        = "LCI_WORKERS"
)

// Settings are the process-wide tool settings.
type Settings struct {
	LogLevel       string
	PNGCompression png.CompressionLevel
	Workers        int
}

// LoadSettings reads the settings from the environment, falling back to
// defaults for unset or unparseable values.
func LoadSettings() Settings {
	return Settings{
		LogLevel:       strings.ToLower(getStringWithEnvFallback(EnvLogLevel, "info")),
		PNGCompression: compressionLevel(os.Getenv(EnvPNGCompression)),
		Workers:        getIntWithEnvFallback(EnvWorkers, runtime.NumCPU()),
	}
}

// Debug reports whether debug logging is enabled.
func (s Settings) Debug() bool {
	return s.LogLevel == "debug"
}

func getStringWithEnvFallback(envVar, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v
	}
	return defaultValue
}

// getIntWithEnvFallback returns a positive integer from envVar, or
// defaultValue.
func getIntWithEnvFallback(envVar string, defaultValue int) int {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func compressionLevel(name string) png.CompressionLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return png.NoCompression
	case "fast", "speed":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}
