package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/device"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

type Config struct {
	ListenAddr   string
	Backend      string
	BufferFrames int
	PresetDir    string
	MonitorSec   int
	LogDev       bool
	Autostart    bool
	// ControlToken, when set, is required as a bearer token on /v1 routes.
	ControlToken string
	Initial      synth.Params
}

// Load reads the configuration from the environment, falling back to defaults.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		ListenAddr:   env("LISTEN_ADDR", ":9090"),
		Backend:      env("AUDIO_BACKEND", device.BackendOto),
		PresetDir:    env("PRESET_DIR", "."),
		ControlToken: getenv("CONTROL_TOKEN"),
	}

	var err error
	if cfg.BufferFrames, err = atoi("BUFFER_FRAMES", env("BUFFER_FRAMES", "512")); err != nil {
		return nil, err
	}
	if cfg.BufferFrames < 16 || cfg.BufferFrames > 16384 {
		return nil, fmt.Errorf("BUFFER_FRAMES must be in [16, 16384], got %d", cfg.BufferFrames)
	}
	if cfg.MonitorSec, err = atoi("MONITOR_SEC", env("MONITOR_SEC", "2")); err != nil {
		return nil, err
	}
	if cfg.MonitorSec < 0 || cfg.MonitorSec > 10 {
		return nil, fmt.Errorf("MONITOR_SEC must be in [0, 10], got %d", cfg.MonitorSec)
	}
	if cfg.LogDev, err = strconv.ParseBool(env("LOG_DEV", "false")); err != nil {
		return nil, fmt.Errorf("LOG_DEV: %w", err)
	}
	if cfg.Autostart, err = strconv.ParseBool(env("AUTOSTART", "false")); err != nil {
		return nil, fmt.Errorf("AUTOSTART: %w", err)
	}

	switch cfg.Backend {
	case device.BackendOto, device.BackendPulse, device.BackendPortAudio, device.BackendNull:
	default:
		return nil, fmt.Errorf("AUDIO_BACKEND: %w: %q", device.ErrUnknownBackend, cfg.Backend)
	}

	if cfg.Initial.Frequency, err = atof("DEFAULT_FREQUENCY", env("DEFAULT_FREQUENCY", "440")); err != nil {
		return nil, err
	}
	if cfg.Initial.Volume, err = atof("DEFAULT_VOLUME", env("DEFAULT_VOLUME", "0.5")); err != nil {
		return nil, err
	}
	if cfg.Initial.Wave, err = synth.ParseWaveKind(env("DEFAULT_WAVE", "sine")); err != nil {
		return nil, fmt.Errorf("DEFAULT_WAVE: %w", err)
	}
	if err := cfg.Initial.Validate(); err != nil {
		return nil, fmt.Errorf("default tone: %w", err)
	}

	return cfg, nil
}

func atoi(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func atof(key, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
