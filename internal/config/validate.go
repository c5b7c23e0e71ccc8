package config

import "fmt"

// validate clamps out-of-range values back to defaults, reporting each
// correction as a warning.
func validate(cfg Config) (Config, []Warning) {
	defaults := Default()
	var warnings []Warning

	warn := func(format string, args ...any) {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Backend != BackendSonos && cfg.Backend != BackendMPD {
		warn("unknown backend %q; using %q", cfg.Backend, defaults.Backend)
		cfg.Backend = defaults.Backend
	}
	if cfg.VolumeStep <= 0 || cfg.VolumeStep > 100 {
		warn("volume_step %d out of range; using %d", cfg.VolumeStep, defaults.VolumeStep)
		cfg.VolumeStep = defaults.VolumeStep
	}
	if cfg.SocketPath == "" {
		warn("socket_path empty; using %q", defaults.SocketPath)
		cfg.SocketPath = defaults.SocketPath
	}
	if cfg.IdleTimeoutMS <= 0 {
		warn("idle_timeout_ms %d out of range; using %d", cfg.IdleTimeoutMS, defaults.IdleTimeoutMS)
		cfg.IdleTimeoutMS = defaults.IdleTimeoutMS
	}
	if cfg.Style.DurationMS <= 0 {
		warn("style.duration_ms %d out of range; using %d", cfg.Style.DurationMS, defaults.Style.DurationMS)
		cfg.Style.DurationMS = defaults.Style.DurationMS
	}
	if cfg.Style.BackgroundOpacity < 0 || cfg.Style.BackgroundOpacity > 1 {
		warn("style.background_opacity %v out of range; using %v",
			cfg.Style.BackgroundOpacity, defaults.Style.BackgroundOpacity)
		cfg.Style.BackgroundOpacity = defaults.Style.BackgroundOpacity
	}
	if cfg.IdleTimeoutMS < cfg.Style.DurationMS {
		warn("idle_timeout_ms %d shorter than style.duration_ms %d; raising to match",
			cfg.IdleTimeoutMS, cfg.Style.DurationMS)
		cfg.IdleTimeoutMS = cfg.Style.DurationMS
	}

	return cfg, warnings
}
