package overlay

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sonoctl/internal/ipc"
	"sonoctl/internal/state"
)

type fakeRenderer struct {
	mu    sync.Mutex
	shows []state.Record
	hides int
}

func (f *fakeRenderer) Show(_ context.Context, rec state.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shows = append(f.shows, rec)
	return nil
}

func (f *fakeRenderer) Hide(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides++
	return nil
}

func (f *fakeRenderer) snapshot() ([]state.Record, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]state.Record(nil), f.shows...), f.hides
}

func volumeRecord(volume int) state.Record {
	muted := false
	return state.Record{Action: state.ActionVolumeUp, Volume: &volume, Muted: &muted}
}

func startSession(t *testing.T, display, idle time.Duration) (string, *fakeRenderer, *Session) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.sock")
	conn, err := ipc.Bind(path)
	require.NoError(t, err)

	renderer := &fakeRenderer{}
	session := NewSession(conn, SessionConfig{
		SocketPath:      path,
		DisplayDuration: display,
		IdleTimeout:     idle,
	}, renderer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return path, renderer, session
}

func TestSessionDisplaysInitialRecordFirst(t *testing.T) {
	path, renderer, session := startSession(t, 30*time.Millisecond, 150*time.Millisecond)

	initial := volumeRecord(25)
	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background(), &initial) }()

	require.NoError(t, ipc.Send(path, volumeRecord(50), 200*time.Millisecond))

	require.NoError(t, <-done)

	shows, _ := renderer.snapshot()
	require.NotEmpty(t, shows)
	require.Equal(t, initial, shows[0])
	require.Equal(t, volumeRecord(50), shows[len(shows)-1])
}

func TestSessionIdleExitRemovesSocket(t *testing.T) {
	path, renderer, session := startSession(t, 20*time.Millisecond, 100*time.Millisecond)

	start := time.Now()
	require.NoError(t, session.Run(context.Background(), nil))
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	// With the socket gone, delivery reports no listener and a fresh
	// server would be spawned.
	require.ErrorIs(t, ipc.Send(path, volumeRecord(1), 100*time.Millisecond), ipc.ErrNoListener)

	_, hides := renderer.snapshot()
	require.Zero(t, hides)
}

func TestSessionHidesNotificationButStaysResident(t *testing.T) {
	path, renderer, session := startSession(t, 25*time.Millisecond, 400*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background(), nil) }()

	require.NoError(t, ipc.Send(path, volumeRecord(10), 200*time.Millisecond))

	require.Eventually(t, func() bool {
		_, hides := renderer.snapshot()
		return hides == 1
	}, 300*time.Millisecond, 5*time.Millisecond)

	// Still listening after the visual hide: a new record is rendered.
	require.NoError(t, ipc.Send(path, volumeRecord(20), 200*time.Millisecond))
	require.Eventually(t, func() bool {
		shows, _ := renderer.snapshot()
		return len(shows) == 2
	}, 300*time.Millisecond, 5*time.Millisecond)

	require.NoError(t, <-done)
}

func TestSessionLastRecordWins(t *testing.T) {
	path, renderer, session := startSession(t, 20*time.Millisecond, 150*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background(), nil) }()

	const burst = 10
	for i := 1; i <= burst; i++ {
		require.NoError(t, ipc.Send(path, volumeRecord(i), 200*time.Millisecond))
	}

	require.NoError(t, <-done)

	shows, _ := renderer.snapshot()
	require.Len(t, shows, burst)
	require.Equal(t, volumeRecord(burst), shows[len(shows)-1])
}

func TestSessionIgnoresMalformedDatagrams(t *testing.T) {
	path, renderer, session := startSession(t, 20*time.Millisecond, 200*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background(), nil) }()

	raw, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: path, Net: "unixgram"})
	require.NoError(t, err)
	_, err = raw.Write([]byte("not-a-record"))
	require.NoError(t, err)
	_, err = raw.Write([]byte(`{"action":"detonate"}`))
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	require.NoError(t, ipc.Send(path, volumeRecord(5), 200*time.Millisecond))

	require.NoError(t, <-done)

	shows, _ := renderer.snapshot()
	require.Len(t, shows, 1)
	require.Equal(t, volumeRecord(5), shows[0])
}

func TestSessionRepeatedRecordLeavesDisplayedStateUnchanged(t *testing.T) {
	path, renderer, session := startSession(t, 50*time.Millisecond, 200*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background(), nil) }()

	rec := volumeRecord(33)
	require.NoError(t, ipc.Send(path, rec, 200*time.Millisecond))
	require.NoError(t, ipc.Send(path, rec, 200*time.Millisecond))

	require.NoError(t, <-done)

	shows, _ := renderer.snapshot()
	require.NotEmpty(t, shows)
	for _, shown := range shows {
		require.Equal(t, rec, shown)
	}
	require.Equal(t, rec, session.last)
}

func TestSessionTerminationSignalRunsCleanup(t *testing.T) {
	path, renderer, session := startSession(t, time.Second, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx, nil) }()

	require.NoError(t, ipc.Send(path, volumeRecord(60), 200*time.Millisecond))
	require.Eventually(t, func() bool {
		shows, _ := renderer.snapshot()
		return len(shows) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	// The notification was still visible at shutdown; cleanup hides it.
	_, hides := renderer.snapshot()
	require.Equal(t, 1, hides)
}
