package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"sonoctl/internal/config"
	"sonoctl/internal/state"
)

const notifyAppName = "sonos-ctl-overlay"

// NotifyRenderer presents state records as freedesktop notifications over
// DBus via busctl. Reusing one replace-id updates the visible notification
// in place instead of stacking a new one per hotkey press.
type NotifyRenderer struct {
	style  config.Style
	logger *slog.Logger

	mu             sync.Mutex
	notificationID uint32
}

// NewNotifyRenderer builds the DBus notification renderer.
func NewNotifyRenderer(style config.Style, logger *slog.Logger) *NotifyRenderer {
	return &NotifyRenderer{style: style, logger: logger}
}

var _ Renderer = (*NotifyRenderer)(nil)

// Show renders rec, replacing any notification still on screen.
func (n *NotifyRenderer) Show(ctx context.Context, rec state.Record) error {
	summary, body := Compose(rec)

	n.mu.Lock()
	replaceID := n.notificationID
	n.mu.Unlock()

	id, err := desktopNotify(ctx, replaceID, summary, body, n.style.DurationMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.notificationID = id
	n.mu.Unlock()
	return nil
}

// Hide dismisses the visible notification, if any.
func (n *NotifyRenderer) Hide(ctx context.Context) error {
	n.mu.Lock()
	id := n.notificationID
	n.mu.Unlock()
	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// desktopNotify sends a freedesktop notification over DBus via busctl and
// returns the notification ID assigned by the server.
func desktopNotify(ctx context.Context, replaceID uint32, summary, body string, timeoutMS int) (uint32, error) {
	args := []string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"Notify",
		"susssasa{sv}i",
		notifyAppName,
		fmt.Sprintf("%d", replaceID),
		"",
		summary,
		body,
		"0", // actions array length
		"0", // hints map length
		fmt.Sprintf("%d", timeoutMS),
	}

	out, err := exec.CommandContext(ctx, "busctl", args...).CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return 0, fmt.Errorf("desktop notify failed: %w", err)
		}
		return 0, fmt.Errorf("desktop notify failed: %w (%s)", err, trimmed)
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) < 2 || fields[0] != "u" {
		return 0, fmt.Errorf("desktop notify invalid response: %q", strings.TrimSpace(string(out)))
	}

	value, parseErr := strconv.ParseUint(fields[1], 10, 32)
	if parseErr != nil {
		return 0, fmt.Errorf("desktop notify parse id %q: %w", fields[1], parseErr)
	}
	return uint32(value), nil
}

// desktopDismiss requests explicit close by notification ID.
func desktopDismiss(ctx context.Context, id uint32) error {
	args := []string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"CloseNotification",
		"u",
		fmt.Sprintf("%d", id),
	}

	out, err := exec.CommandContext(ctx, "busctl", args...).CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return fmt.Errorf("desktop dismiss failed: %w", err)
		}
		return fmt.Errorf("desktop dismiss failed: %w (%s)", err, trimmed)
	}

	return nil
}
