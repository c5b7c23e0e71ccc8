package config

// BackendSonos and BackendMPD are the supported controller backends.
const (
	BackendSonos = "sonos"
	BackendMPD   = "mpd"
)

// Default returns the canonical runtime configuration used when no file is
// present.
func Default() Config {
	return Config{
		Backend:       BackendSonos,
		MPDAddress:    "127.0.0.1:6600",
		VolumeStep:    2,
		SocketPath:    "/tmp/sonos-ctl-overlay.sock",
		IdleTimeoutMS: 10000,
		Style: Style{
			BackgroundColor:   "#D6D6D7",
			BackgroundOpacity: 0.5,
			FontColor:         "#000000",
			CornerRadius:      16,
			DurationMS:        1500,
		},
	}
}
