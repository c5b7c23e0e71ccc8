// Package state defines the display state record and the encoder that
// builds it from a device action.
package state

import "fmt"

// Action is one user-requested device command.
type Action string

const (
	ActionVolumeUp   Action = "volume_up"
	ActionVolumeDown Action = "volume_down"
	ActionMute       Action = "mute"
	ActionPlayPause  Action = "playpause"
	ActionNext       Action = "next"
	ActionPrev       Action = "prev"
)

// Actions lists every valid action in CLI presentation order.
func Actions() []Action {
	return []Action{ActionVolumeUp, ActionVolumeDown, ActionMute, ActionPlayPause, ActionNext, ActionPrev}
}

// ParseAction validates a CLI action token.
func ParseAction(token string) (Action, error) {
	action := Action(token)
	for _, valid := range Actions() {
		if action == valid {
			return action, nil
		}
	}
	return "", fmt.Errorf("invalid action: %s", token)
}

// VolumeAction reports whether the action carries volume/mute fields.
func (a Action) VolumeAction() bool {
	return a == ActionVolumeUp || a == ActionVolumeDown || a == ActionMute
}

// PlaybackState is the post-action transport state carried for display.
type PlaybackState string

const (
	PlaybackPlaying PlaybackState = "playing"
	PlaybackPaused  PlaybackState = "paused"
)

// Record is the serializable snapshot of one action's resulting state. Only
// the fields relevant to Action are populated; consumers branch on Action
// first and must not read absent fields. A nil pointer means the encoder
// could not determine the value, not zero/false.
type Record struct {
	Action   Action         `json:"action"`
	Volume   *int           `json:"volume,omitempty"`
	Muted    *bool          `json:"muted,omitempty"`
	Playback *PlaybackState `json:"playback,omitempty"`
}

// Validate rejects records whose action is unknown.
func (r Record) Validate() error {
	if _, err := ParseAction(string(r.Action)); err != nil {
		return err
	}
	return nil
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func playbackPtr(v PlaybackState) *PlaybackState { return &v }
