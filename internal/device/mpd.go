package device

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
)

// unmuteFallbackVolume is restored when unmuting without a remembered level,
// which happens when mute and unmute run in different CLI invocations.
const unmuteFallbackVolume = 50

var _ Controller = (*MPD)(nil)

// MPD adapts a Music Player Daemon server to the Controller contract.
// MPD has no mute flag, so mute is emulated: volume zero counts as muted,
// and unmute restores the last volume seen before muting.
type MPD struct {
	client *mpd.Client

	mu         sync.Mutex
	lastVolume int
}

// DialMPD connects to the MPD server at addr (host:port).
func DialMPD(addr string) (*MPD, error) {
	client, err := mpd.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial mpd %s: %w", addr, err)
	}
	return &MPD{client: client}, nil
}

// Close releases the MPD connection.
func (m *MPD) Close() error {
	return m.client.Close()
}

func (m *MPD) Volume(context.Context) (int, error) {
	status, err := m.client.Status()
	if err != nil {
		return 0, fmt.Errorf("mpd status: %w", err)
	}
	raw, ok := status["volume"]
	if !ok {
		return 0, fmt.Errorf("mpd status missing volume")
	}
	volume, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse mpd volume %q: %w", raw, err)
	}
	return volume, nil
}

func (m *MPD) SetVolume(_ context.Context, volume int) error {
	return m.client.SetVolume(volume)
}

func (m *MPD) Muted(ctx context.Context) (bool, error) {
	volume, err := m.Volume(ctx)
	if err != nil {
		return false, err
	}
	return volume == 0, nil
}

func (m *MPD) SetMute(ctx context.Context, muted bool) error {
	if muted {
		volume, err := m.Volume(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.lastVolume = volume
		m.mu.Unlock()
		return m.client.SetVolume(0)
	}

	m.mu.Lock()
	restore := m.lastVolume
	m.mu.Unlock()
	if restore <= 0 {
		restore = unmuteFallbackVolume
	}
	return m.client.SetVolume(restore)
}

func (m *MPD) TransportState(context.Context) (TransportState, error) {
	status, err := m.client.Status()
	if err != nil {
		return "", fmt.Errorf("mpd status: %w", err)
	}
	switch status["state"] {
	case "play":
		return TransportPlaying, nil
	case "pause":
		return TransportPaused, nil
	default:
		return TransportStopped, nil
	}
}

func (m *MPD) Play(context.Context) error {
	// -1 resumes the current queue position.
	return m.client.Play(-1)
}

func (m *MPD) Pause(context.Context) error {
	return m.client.Pause(true)
}

func (m *MPD) Next(context.Context) error {
	return m.client.Next()
}

func (m *MPD) Previous(context.Context) error {
	return m.client.Previous()
}
