package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"sonoctl/internal/state"
)

// ErrNoListener reports that nothing is bound at the transport address.
// It is the defined trigger for spawning a fresh overlay server, not a
// user-facing failure.
var ErrNoListener = errors.New("no overlay listener")

// Send delivers one state record to the overlay socket, fire-and-forget.
// Success means the kernel accepted the datagram for a bound listener;
// there is no acknowledgement that it was rendered.
func Send(path string, rec state.Record, timeout time.Duration) error {
	payload, err := MarshalRecord(rec)
	if err != nil {
		return err
	}

	addr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.DialUnix("unixgram", nil, addr)
	if err != nil {
		if isNoListener(err) {
			return ErrNoListener
		}
		return fmt.Errorf("dial overlay socket %s: %w", path, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := conn.Write(payload); err != nil {
		if isNoListener(err) {
			return ErrNoListener
		}
		return fmt.Errorf("send state record: %w", err)
	}
	return nil
}

// isNoListener classifies absent-socket and dead-listener failures. A
// missing socket file reports ENOENT; a leftover file from a crashed
// server reports ECONNREFUSED.
func isNoListener(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED)
}
