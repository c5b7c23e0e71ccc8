package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"syscall"
)

// ErrAlreadyBound reports that a live overlay server already owns the
// transport address. The caller must exit without touching the socket
// file: it belongs to the winner.
var ErrAlreadyBound = errors.New("overlay socket already bound")

// Bind claims exclusive ownership of the transport address. Bind is the
// singleton mutual-exclusion step: the operating system guarantees at most
// one owner per address, so no separate lock file is needed.
func Bind(path string) (*net.UnixConn, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure socket dir: %w", err)
	}

	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, ErrAlreadyBound
		}
		return nil, fmt.Errorf("bind overlay socket %s: %w", path, err)
	}
	_ = os.Chmod(path, 0o600)
	return conn, nil
}

// Unlink removes the socket artifact, tolerating its absence.
func Unlink(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove socket %s: %w", path, err)
	}
	return nil
}
