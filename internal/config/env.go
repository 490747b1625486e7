package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LogLevel returns the level named by RASTERKIT_LOG_LEVEL.
func LogLevel() slog.Level {
	return parseLogLevel(envStr("RASTERKIT_LOG_LEVEL", "info"))
}

// Load returns the stored settings with environment overrides applied.
// Settings are kept in RASTERKIT_CONFIG_DIR when set, in memory otherwise.
// A missing settings file is created with the defaults.
func Load() (Settings, error) {
	store := NewMemoryStore()
	if dir := os.Getenv("RASTERKIT_CONFIG_DIR"); dir != "" {
		var err error
		if store, err = NewStore(dir); err != nil {
			return Settings{}, err
		}
		if _, err := os.Stat(store.path); errors.Is(err, fs.ErrNotExist) {
			if err := store.Update(store.Get()); err != nil {
				slog.Warn("unable to write default settings", "path", store.path, "err", err)
			}
		}
	}
	return applyEnv(store.Get()), nil
}

func applyEnv(s Settings) Settings {
	s.MaxWidth = envInt("RASTERKIT_MAX_WIDTH", s.MaxWidth)
	s.MaxHeight = envInt("RASTERKIT_MAX_HEIGHT", s.MaxHeight)
	s.Primary = envStr("RASTERKIT_PRIMARY", s.Primary)
	s.Secondary = envStr("RASTERKIT_SECONDARY", s.Secondary)
	s.Saturation = envInt("RASTERKIT_SATURATION", s.Saturation)
	s.Hue = envInt("RASTERKIT_HUE", s.Hue)
	s.Gamma = envFloat("RASTERKIT_GAMMA", s.Gamma)
	s.Brightness = envInt("RASTERKIT_BRIGHTNESS", s.Brightness)
	s.Resolution = envInt("RASTERKIT_RESOLUTION", s.Resolution)
	s.DeviceModel = envInt("RASTERKIT_DEVICE_MODEL", s.DeviceModel)
	s.PageLength = envFloat("RASTERKIT_PAGE_LENGTH", s.PageLength)
	s.PageTop = envFloat("RASTERKIT_PAGE_TOP", s.PageTop)
	s.ProofFormat = strings.ToLower(envStr("RASTERKIT_PROOF_FORMAT", s.ProofFormat))
	return s
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring invalid integer", "key", key, "value", v)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring invalid number", "key", key, "value", v)
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
