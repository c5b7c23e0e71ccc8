package state

import (
	"context"
	"log/slog"

	"sonoctl/internal/device"
)

// Encode executes action against ctrl and returns the post-action record.
//
// Device failures are logged and swallowed: the returned record may be
// missing fields, and the renderer substitutes documented defaults. The
// display is best-effort and must never fail the invocation.
//
// Next/Prev optimistically report Playing. Some firmware keeps a paused
// transport paused across a track skip; the mapping is fixed and documented
// rather than verified against the device.
func Encode(ctx context.Context, ctrl device.Controller, action Action, step int, logger *slog.Logger) Record {
	rec := Record{Action: action}

	switch action {
	case ActionVolumeUp, ActionVolumeDown:
		volume, err := ctrl.Volume(ctx)
		if err != nil {
			logger.Error("read volume failed", "action", action, "error", err.Error())
			return rec
		}
		delta := step
		if action == ActionVolumeDown {
			delta = -step
		}
		target := clampVolume(volume + delta)
		if err := ctrl.SetVolume(ctx, target); err != nil {
			logger.Error("set volume failed", "target", target, "error", err.Error())
			target = volume
		}
		rec.Volume = intPtr(target)
		if muted, err := ctrl.Muted(ctx); err != nil {
			logger.Error("read mute failed", "error", err.Error())
		} else {
			rec.Muted = boolPtr(muted)
		}

	case ActionMute:
		muted, err := ctrl.Muted(ctx)
		if err != nil {
			logger.Error("read mute failed", "error", err.Error())
			return rec
		}
		target := !muted
		if err := ctrl.SetMute(ctx, target); err != nil {
			logger.Error("set mute failed", "target", target, "error", err.Error())
			target = muted
		}
		rec.Muted = boolPtr(target)
		if volume, err := ctrl.Volume(ctx); err != nil {
			logger.Error("read volume failed", "action", action, "error", err.Error())
		} else {
			rec.Volume = intPtr(volume)
		}

	case ActionPlayPause:
		transport, err := ctrl.TransportState(ctx)
		if err != nil {
			logger.Error("read transport state failed", "error", err.Error())
			return rec
		}
		if transport.Playing() {
			if err := ctrl.Pause(ctx); err != nil {
				logger.Error("pause failed", "error", err.Error())
				return rec
			}
			rec.Playback = playbackPtr(PlaybackPaused)
		} else {
			if err := ctrl.Play(ctx); err != nil {
				logger.Error("play failed", "error", err.Error())
				return rec
			}
			rec.Playback = playbackPtr(PlaybackPlaying)
		}

	case ActionNext:
		if err := ctrl.Next(ctx); err != nil {
			logger.Error("next failed", "error", err.Error())
		}
		rec.Playback = playbackPtr(PlaybackPlaying)

	case ActionPrev:
		if err := ctrl.Previous(ctx); err != nil {
			logger.Error("previous failed", "error", err.Error())
		}
		rec.Playback = playbackPtr(PlaybackPlaying)
	}

	return rec
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
