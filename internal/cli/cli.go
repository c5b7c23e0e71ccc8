// Package cli parses the sonoctl command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"sonoctl/internal/state"
)

// OverlayCommand is the internal server-mode invocation. It is produced
// only by the coordinator's spawn step and never typed by users, so it is
// absent from the help text.
const OverlayCommand = "__overlay"

// Parsed is the fully interpreted command line.
type Parsed struct {
	ConfigPath  string
	ShowHelp    bool
	ShowVersion bool

	// User form: [device-address] <action>.
	Action        state.Action
	DeviceAddress string

	// Server-mode form:
	// __overlay --socket PATH [--record JSON] [--style JSON] [--idle-ms N].
	OverlayMode   bool
	SocketPath    string
	RecordJSON    string
	StyleJSON     string
	IdleTimeoutMS int
}

// Parse interprets args. No args is a help request; malformed input is an
// error the caller turns into usage output.
func Parse(args []string) (Parsed, error) {
	fs := flag.NewFlagSet("sonoctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var parsed Parsed
	fs.StringVar(&parsed.ConfigPath, "config", "", "config file path")
	fs.BoolVarP(&parsed.ShowHelp, "help", "h", false, "show help")
	fs.BoolVar(&parsed.ShowVersion, "version", false, "show version")
	fs.StringVar(&parsed.SocketPath, "socket", "", "overlay socket path")
	fs.StringVar(&parsed.RecordJSON, "record", "", "serialized initial state record")
	fs.StringVar(&parsed.StyleJSON, "style", "", "serialized rendering style")
	fs.IntVar(&parsed.IdleTimeoutMS, "idle-ms", 0, "overlay idle timeout in milliseconds")

	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}

	rest := fs.Args()
	if parsed.ShowHelp || parsed.ShowVersion {
		return parsed, nil
	}
	if len(rest) == 0 {
		parsed.ShowHelp = true
		return parsed, nil
	}

	if rest[0] == OverlayCommand {
		if len(rest) != 1 {
			return Parsed{}, fmt.Errorf("unexpected arguments after %s", OverlayCommand)
		}
		if parsed.SocketPath == "" {
			return Parsed{}, errors.New("__overlay requires --socket")
		}
		parsed.OverlayMode = true
		return parsed, nil
	}

	var actionToken string
	switch len(rest) {
	case 1:
		actionToken = rest[0]
	case 2:
		parsed.DeviceAddress = rest[0]
		actionToken = rest[1]
	default:
		return Parsed{}, fmt.Errorf("too many arguments: %s", strings.Join(rest, " "))
	}

	action, err := state.ParseAction(actionToken)
	if err != nil {
		return Parsed{}, err
	}
	parsed.Action = action
	return parsed, nil
}

// HelpText is the user-facing usage message.
func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [device-address] <action>

Actions:
  volume_up     Raise volume by the configured step
  volume_down   Lower volume by the configured step
  mute          Toggle mute
  playpause     Toggle playback
  next          Skip to the next track
  prev          Skip to the previous track

The device address is taken from the command line when given, otherwise
from the config file.

Flags:
  --config PATH   Config file path (default: ~/.sonos-ctl-overlay.yml)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
