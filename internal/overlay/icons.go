package overlay

import "sonoctl/internal/state"

// Font Awesome solid glyphs, matching the overlay font shipped with the
// desktop theme.
const (
	glyphVolumeHigh   = "\uf028"
	glyphVolumeLow    = "\uf027"
	glyphVolumeOff    = "\uf026"
	glyphVolumeXmark  = "\uf6a9"
	glyphPlay         = "\uf04b"
	glyphPause        = "\uf04c"
	glyphForwardStep  = "\uf051"
	glyphBackwardStep = "\uf048"
)

// VolumeGlyph picks the speaker glyph for a volume level.
func VolumeGlyph(volume int, muted bool) string {
	switch {
	case muted:
		return glyphVolumeXmark
	case volume == 0:
		return glyphVolumeOff
	case volume < 33:
		return glyphVolumeLow
	default:
		return glyphVolumeHigh
	}
}

// PlaybackGlyph picks the transport glyph for the displayed state: an
// actively playing transport shows the pause glyph, anything else shows
// play.
func PlaybackGlyph(playback state.PlaybackState) string {
	if playback == state.PlaybackPlaying {
		return glyphPause
	}
	return glyphPlay
}

// TrackGlyph picks the skip glyph for next/prev actions.
func TrackGlyph(action state.Action) string {
	if action == state.ActionPrev {
		return glyphBackwardStep
	}
	return glyphForwardStep
}
