// Package app wires CLI parsing, configuration, device control, and the
// overlay transport into the process entrypoints.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"sonoctl/internal/cli"
	"sonoctl/internal/config"
	"sonoctl/internal/device"
	"sonoctl/internal/ipc"
	"sonoctl/internal/logging"
	"sonoctl/internal/overlay"
	"sonoctl/internal/state"
	"sonoctl/internal/version"
)

// Runner executes one invocation. The zero-value hooks select production
// behavior; tests inject fakes.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// NewController overrides device controller construction.
	NewController func(ctx context.Context, cfg config.Config, address string, logger *slog.Logger) (device.Controller, func(), error)
	// Spawn overrides the detached overlay server launch.
	Spawn func(cfg config.Config) ipc.SpawnFunc
}

// Execute runs one sonoctl invocation and returns its exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("sonoctl"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("sonoctl"))
		return 0
	}
	if parsed.ShowVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	if parsed.OverlayMode {
		return r.commandOverlay(ctx, parsed)
	}
	return r.commandAction(ctx, parsed)
}

// commandAction is the user-facing path: run the device command, encode
// the resulting state, and hand it to the overlay singleton. Device
// failures never fail the invocation; only argument errors and
// coordination errors do.
func (r Runner) commandAction(ctx context.Context, parsed cli.Parsed) int {
	logger, closeLog := r.logger("cli")
	defer closeLog()

	loaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range loaded.Warnings {
		logger.Warn("config warning", "message", w.Message)
	}
	cfg := loaded.Config

	address, err := resolveAddress(cfg, parsed.DeviceAddress)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("sonoctl"))
		return 2
	}

	logger.Info("command start",
		"action", parsed.Action,
		"backend", cfg.Backend,
		"device", address,
		"config", loaded.Path,
	)

	rec := r.encodeState(ctx, cfg, address, parsed.Action, logger)

	spawn := r.Spawn
	if spawn == nil {
		spawn = spawnOverlay
	}
	if err := ipc.DeliverOrSpawn(ctx, cfg.SocketPath, rec, spawn(cfg)); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("deliver state failed", "error", err.Error())
		return 1
	}
	return 0
}

// encodeState builds the post-action record. A controller that cannot
// even be constructed degrades to a bare record: the overlay still shows
// which action fired.
func (r Runner) encodeState(ctx context.Context, cfg config.Config, address string, action state.Action, logger *slog.Logger) state.Record {
	newController := r.NewController
	if newController == nil {
		newController = buildController
	}

	ctrl, closeCtrl, err := newController(ctx, cfg, address, logger)
	if err != nil {
		logger.Error("device controller unavailable", "backend", cfg.Backend, "error", err.Error())
		return state.Record{Action: action}
	}
	defer closeCtrl()

	return state.Encode(ctx, ctrl, action, cfg.VolumeStep, logger)
}

// commandOverlay runs the process in display-server role. It must stay
// silent on the bind-conflict path: losing the spawn race is expected and
// the winner already has the job covered.
func (r Runner) commandOverlay(ctx context.Context, parsed cli.Parsed) int {
	logger, closeLog := r.logger("overlay")
	defer closeLog()

	style := config.Default().Style
	if parsed.StyleJSON != "" {
		if err := json.Unmarshal([]byte(parsed.StyleJSON), &style); err != nil {
			logger.Warn("invalid style payload; using defaults", "error", err.Error())
			style = config.Default().Style
		}
	}
	idleMS := parsed.IdleTimeoutMS
	if idleMS <= 0 {
		idleMS = config.Default().IdleTimeoutMS
	}

	var initial *state.Record
	if parsed.RecordJSON != "" {
		rec, err := ipc.UnmarshalRecord([]byte(parsed.RecordJSON))
		if err != nil {
			logger.Warn("invalid startup record; starting empty", "error", err.Error())
		} else {
			initial = &rec
		}
	}

	conn, err := ipc.Bind(parsed.SocketPath)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyBound) {
			logger.Info("overlay already running; exiting", "socket", parsed.SocketPath)
			return 0
		}
		logger.Error("bind overlay socket failed", "socket", parsed.SocketPath, "error", err.Error())
		return 1
	}

	session := overlay.NewSession(conn, overlay.SessionConfig{
		SocketPath:      parsed.SocketPath,
		DisplayDuration: style.DisplayDuration(),
		IdleTimeout:     time.Duration(idleMS) * time.Millisecond,
	}, overlay.NewNotifyRenderer(style, logger), logger)

	if err := session.Run(ctx, initial); err != nil {
		logger.Error("overlay session failed", "error", err.Error())
		return 1
	}
	return 0
}

// logger returns the injected logger or a fresh file-backed runtime.
func (r Runner) logger(component string) (*slog.Logger, func()) {
	if r.Logger != nil {
		return r.Logger, func() {}
	}
	runtime, err := logging.New(component)
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: setup logging: %v\n", err)
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	return runtime.Logger, func() { _ = runtime.Close() }
}

// resolveAddress picks the device address: positional argument first, then
// the backend's configured address.
func resolveAddress(cfg config.Config, positional string) (string, error) {
	if positional != "" {
		return positional, nil
	}
	switch cfg.Backend {
	case config.BackendMPD:
		return cfg.MPDAddress, nil
	default:
		if cfg.SpeakerIP == "" {
			return "", errors.New("no device address: pass one on the command line or set speaker_ip in the config")
		}
		return cfg.SpeakerIP, nil
	}
}

// buildController constructs the configured backend controller.
func buildController(_ context.Context, cfg config.Config, address string, logger *slog.Logger) (device.Controller, func(), error) {
	switch cfg.Backend {
	case config.BackendMPD:
		ctrl, err := device.DialMPD(address)
		if err != nil {
			return nil, nil, err
		}
		return ctrl, func() { _ = ctrl.Close() }, nil
	default:
		return device.NewSonos(address), func() {}, nil
	}
}
