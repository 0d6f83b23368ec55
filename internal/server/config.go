package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ironsheep/idcard-studio/internal/history"
	"github.com/ironsheep/idcard-studio/internal/imaging"
)

// Config holds the server settings read from the environment.
type Config struct {
	// Debug enables verbose logging (IDCARD_LOG_LEVEL=debug).
	Debug bool

	// PreviewScale is the output scale of interactive renders.
	PreviewScale float64

	// ExportScale is the output scale of the final render that goes onto the card.
	ExportScale float64

	// MaxPixels caps the output size of any render.
	MaxPixels int

	// HistoryLimit is the number of undo steps kept for the card.
	HistoryLimit int

	// Viewport is the editor area photos are fitted into for display.
	Viewport imaging.Size
}

// DefaultConfig returns the settings used when no environment overrides are set.
func DefaultConfig() Config {
	return Config{
		PreviewScale: 1,
		ExportScale:  2,
		MaxPixels:    imaging.DefaultMaxPixels,
		HistoryLimit: history.DefaultLimit,
		Viewport:     imaging.Size{Width: 800, Height: 600},
	}
}

// ConfigFromEnv reads the IDCARD_* environment variables on top of DefaultConfig.
func ConfigFromEnv() (Config, error) {
	return configFrom(os.Getenv)
}

func configFrom(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Debug = getenv("IDCARD_LOG_LEVEL") == "debug"

	floats := []struct {
		key string
		dst *float64
	}{
		{"IDCARD_PREVIEW_SCALE", &cfg.PreviewScale},
		{"IDCARD_EXPORT_SCALE", &cfg.ExportScale},
		{"IDCARD_VIEWPORT_WIDTH", &cfg.Viewport.Width},
		{"IDCARD_VIEWPORT_HEIGHT", &cfg.Viewport.Height},
	}
	for _, f := range floats {
		v := getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("%s=%q: want a positive number", f.key, v)
		}
		*f.dst = n
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"IDCARD_MAX_PIXELS", &cfg.MaxPixels},
		{"IDCARD_HISTORY_LIMIT", &cfg.HistoryLimit},
	}
	for _, i := range ints {
		v := getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("%s=%q: want a positive integer", i.key, v)
		}
		*i.dst = n
	}

	return cfg, nil
}
