package overlay

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"sonoctl/internal/ipc"
	"sonoctl/internal/state"
)

// SessionConfig carries the two independent deadlines of the server: how
// long a notification stays visible, and how long the process stays
// resident without input.
type SessionConfig struct {
	SocketPath      string
	DisplayDuration time.Duration
	IdleTimeout     time.Duration
}

// Session owns the bound transport socket and the currently displayed
// state for the lifetime of one overlay server process. All mutation
// happens on the single Run loop; there is no shared state to lock.
type Session struct {
	conn     *net.UnixConn
	cfg      SessionConfig
	renderer Renderer
	logger   *slog.Logger

	last     state.Record
	visible  bool
	teardown sync.Once
}

// NewSession wraps an exclusively bound socket. The caller has already won
// the bind race; the session takes over closing the socket and unlinking
// its path.
func NewSession(conn *net.UnixConn, cfg SessionConfig, renderer Renderer, logger *slog.Logger) *Session {
	return &Session{conn: conn, cfg: cfg, renderer: renderer, logger: logger}
}

// Run drives the server until the idle deadline passes or ctx is
// cancelled. An optional initial record, handed over by the spawning
// invocation, is displayed before any socket traffic so the cold-start
// notification is never lost.
//
// The loop is single-threaded: one select over incoming records and the
// two timers, each event handled to completion. Socket cleanup runs on
// every exit path, exactly once.
func (s *Session) Run(ctx context.Context, initial *state.Record) error {
	defer s.cleanup()

	records := make(chan state.Record, 16)
	go s.readLoop(records)

	hide := time.NewTimer(s.cfg.DisplayDuration)
	hide.Stop()
	idle := time.NewTimer(s.cfg.IdleTimeout)
	defer hide.Stop()
	defer idle.Stop()

	if initial != nil {
		s.display(ctx, *initial)
		hide.Reset(s.cfg.DisplayDuration)
		idle.Reset(s.cfg.IdleTimeout)
	}

	in := records
	for {
		select {
		case rec, ok := <-in:
			if !ok {
				// Reader died; keep serving timers until idle exit.
				in = nil
				continue
			}
			s.display(ctx, rec)
			hide.Reset(s.cfg.DisplayDuration)
			idle.Reset(s.cfg.IdleTimeout)

		case <-hide.C:
			// Visual hide only; the process stays resident to absorb
			// further bursts without respawning.
			s.hide(ctx)

		case <-idle.C:
			s.logger.Info("overlay idle timeout", "idle_ms", s.cfg.IdleTimeout.Milliseconds())
			return nil

		case <-ctx.Done():
			s.logger.Info("overlay terminating on signal")
			return nil
		}
	}
}

// readLoop drains datagrams into the record channel until the socket
// closes. Malformed payloads are logged and dropped; they never stop the
// server or touch the displayed state.
func (s *Session) readLoop(records chan<- state.Record) {
	defer close(records)
	buf := make([]byte, ipc.MaxDatagram)
	for {
		n, err := s.conn.Read(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Error("overlay socket read failed", "error", err.Error())
			}
			return
		}
		rec, err := ipc.UnmarshalRecord(buf[:n])
		if err != nil {
			s.logger.Warn("discard malformed state record", "error", err.Error())
			continue
		}
		records <- rec
	}
}

// display renders rec and replaces the displayed state wholesale; records
// are never merged.
func (s *Session) display(ctx context.Context, rec state.Record) {
	if err := s.renderer.Show(ctx, rec); err != nil {
		s.logger.Error("render failed", "action", rec.Action, "error", err.Error())
	}
	s.last = rec
	s.visible = true
}

func (s *Session) hide(ctx context.Context) {
	if !s.visible {
		return
	}
	if err := s.renderer.Hide(ctx); err != nil {
		s.logger.Error("hide failed", "error", err.Error())
	}
	s.visible = false
}

// cleanup closes the socket and removes its path. Guarded so the idle,
// signal, and panic paths cannot run it twice.
func (s *Session) cleanup() {
	s.teardown.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.hide(ctx)
		_ = s.conn.Close()
		if err := ipc.Unlink(s.cfg.SocketPath); err != nil {
			s.logger.Error("remove overlay socket failed", "error", err.Error())
		}
	})
}
