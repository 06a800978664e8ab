// Package notify sends best-effort desktop notifications via notify-send.
// Callers treat failures as non-fatal; a headless machine simply gets none.
package notify

import (
	"fmt"
	"os/exec"
)

const appName = "local-whisper"

// Notifier sends desktop notifications for transcription outcomes.
type Notifier struct {
	available bool
}

// New creates a Notifier. Availability of notify-send is checked once here;
// on machines without it every send becomes a silent no-op error.
func New() *Notifier {
	_, err := exec.LookPath("notify-send")
	return &Notifier{available: err == nil}
}

// Info sends an informational desktop notification.
func (n *Notifier) Info(title, message string) error {
	return n.send(title, message, false)
}

// Error sends an error desktop notification with critical urgency.
func (n *Notifier) Error(title, message string) error {
	return n.send(title, message, true)
}

func (n *Notifier) send(title, message string, critical bool) error {
	if !n.available {
		return fmt.Errorf("notify-send is not installed")
	}

	args := []string{"-a", appName}
	if critical {
		args = append(args, "-u", "critical")
	}
	args = append(args, title, message)

	if err := exec.Command("notify-send", args...).Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
