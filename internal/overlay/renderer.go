// Package overlay runs the transient-display server: a singleton process
// that owns the transport socket, renders incoming state records, and
// exits after an idle period.
package overlay

import (
	"context"
	"fmt"
	"strings"

	"sonoctl/internal/state"
)

// Renderer owns all visual presentation of a state record. It knows
// nothing about the transport or the device.
type Renderer interface {
	Show(ctx context.Context, rec state.Record) error
	Hide(ctx context.Context) error
}

// Defaults substituted for fields the encoder could not determine. They
// exist only at the rendering boundary; business logic never defaults.
const (
	defaultVolume   = 0
	defaultMuted    = false
	defaultPlayback = state.PlaybackPaused
)

// Compose formats the notification summary and body for a record,
// branching on the action before reading any optional field.
func Compose(rec state.Record) (summary, body string) {
	switch {
	case rec.Action.VolumeAction():
		volume := defaultVolume
		if rec.Volume != nil {
			volume = *rec.Volume
		}
		muted := defaultMuted
		if rec.Muted != nil {
			muted = *rec.Muted
		}
		label := fmt.Sprintf("%d%%", volume)
		if muted {
			label = "Muted"
		}
		return VolumeGlyph(volume, muted) + "  " + label, volumeBar(volume)

	case rec.Action == state.ActionPlayPause:
		playback := defaultPlayback
		if rec.Playback != nil {
			playback = *rec.Playback
		}
		label := "Paused"
		if playback == state.PlaybackPlaying {
			label = "Playing"
		}
		return PlaybackGlyph(playback) + "  " + label, ""

	default:
		label := "Next Track"
		if rec.Action == state.ActionPrev {
			label = "Previous Track"
		}
		return TrackGlyph(rec.Action) + "  " + label, ""
	}
}

// volumeBar renders a ten-segment level bar for the notification body.
func volumeBar(volume int) string {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	filled := volume / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}
