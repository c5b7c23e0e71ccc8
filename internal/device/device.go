// Package device exposes playback and volume control for one addressed
// speaker behind a narrow controller contract.
package device

import "context"

// TransportState is the raw transport state reported by a controller.
type TransportState string

const (
	TransportPlaying TransportState = "PLAYING"
	TransportPaused  TransportState = "PAUSED_PLAYBACK"
	TransportStopped TransportState = "STOPPED"
)

// Playing reports whether the transport is actively playing.
func (t TransportState) Playing() bool {
	return t == TransportPlaying
}

// Controller is the command/query surface the state encoder drives.
// Implementations report failures as errors; they never panic the caller.
type Controller interface {
	Volume(ctx context.Context) (int, error)
	SetVolume(ctx context.Context, volume int) error
	Muted(ctx context.Context) (bool, error)
	SetMute(ctx context.Context, muted bool) error
	TransportState(ctx context.Context) (TransportState, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
}
