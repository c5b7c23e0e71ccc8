// Package config resolves, parses, validates, and defaults sonoctl
// configuration.
package config

import "time"

// Config is the fully materialized runtime configuration.
type Config struct {
	// SpeakerIP addresses the Sonos zone player when no address is given
	// on the command line.
	SpeakerIP string `yaml:"speaker_ip"`
	// Backend selects the device controller: "sonos" or "mpd".
	Backend string `yaml:"backend"`
	// MPDAddress is the host:port of the MPD server for the mpd backend.
	MPDAddress string `yaml:"mpd_address"`
	// VolumeStep is applied per volume_up/volume_down invocation.
	VolumeStep int `yaml:"volume_step"`
	// SocketPath is the well-known overlay transport address.
	SocketPath string `yaml:"socket_path"`
	// IdleTimeoutMS is how long the overlay server stays resident with no
	// incoming state before exiting.
	IdleTimeoutMS int `yaml:"idle_timeout_ms"`

	Style Style `yaml:"style"`
}

// Style is the rendering configuration handed to the overlay server.
type Style struct {
	BackgroundColor   string  `yaml:"background_color" json:"background_color"`
	BackgroundOpacity float64 `yaml:"background_opacity" json:"background_opacity"`
	FontColor         string  `yaml:"font_color" json:"font_color"`
	CornerRadius      int     `yaml:"corner_radius" json:"corner_radius"`
	// DurationMS is how long one notification stays visible. It is
	// independent of IdleTimeoutMS: the notification hides quickly while
	// the process lingers to absorb hotkey bursts.
	DurationMS int `yaml:"duration_ms" json:"duration_ms"`
}

// DisplayDuration returns DurationMS as a duration.
func (s Style) DisplayDuration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// IdleTimeout returns IdleTimeoutMS as a duration.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMS) * time.Millisecond
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}
