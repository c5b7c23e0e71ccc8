package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"sonoctl/internal/cli"
	"sonoctl/internal/config"
	"sonoctl/internal/ipc"
	"sonoctl/internal/state"
)

// spawnOverlay launches this binary in display-server role, detached from
// the invoking session so it survives the CLI's exit. The first record
// rides along as an argument, which makes cold-start delivery independent
// of how fast the new server binds its socket.
func spawnOverlay(cfg config.Config) ipc.SpawnFunc {
	return func(_ context.Context, rec state.Record) error {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolve executable: %w", err)
		}
		payload, err := ipc.MarshalRecord(rec)
		if err != nil {
			return err
		}
		styleJSON, err := json.Marshal(cfg.Style)
		if err != nil {
			return fmt.Errorf("encode style: %w", err)
		}

		// Deliberately not CommandContext: the server must outlive the
		// CLI invocation and its signal context.
		cmd := exec.Command(exe,
			cli.OverlayCommand,
			"--socket", cfg.SocketPath,
			"--record", string(payload),
			"--style", string(styleJSON),
			"--idle-ms", strconv.Itoa(cfg.IdleTimeoutMS),
		)
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
		cmd.Stdin = nil
		cmd.Stdout = nil
		cmd.Stderr = nil

		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start overlay server: %w", err)
		}
		return cmd.Process.Release()
	}
}
