package ipc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sonoctl/internal/state"
)

// SendTimeout bounds the CLI-side delivery attempt so an invocation never
// hangs on a wedged server.
const SendTimeout = 250 * time.Millisecond

// SpawnFunc launches a detached overlay server seeded with the record, so
// the first notification is not raced against the new server's socket
// setup.
type SpawnFunc func(ctx context.Context, rec state.Record) error

// DeliverOrSpawn hands one state record to the running overlay server, or
// starts one when delivery reports no listener. Two invocations racing
// through the no-listener window may both spawn; the bind step in the
// spawned server resolves that race, and the loser's seed record is
// dropped.
func DeliverOrSpawn(ctx context.Context, path string, rec state.Record, spawn SpawnFunc) error {
	err := Send(path, rec, SendTimeout)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNoListener) {
		return fmt.Errorf("deliver state record: %w", err)
	}

	// A crashed server can leave its socket file behind, which would make
	// the successor's bind fail. Best effort: a live server's file is
	// never reachable here, because sends to it succeed.
	_ = Unlink(path)

	if err := spawn(ctx, rec); err != nil {
		return fmt.Errorf("spawn overlay server: %w", err)
	}
	return nil
}
