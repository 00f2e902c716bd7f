// Package notify reports session milestones without ever failing the
// session. A missing notify-send binary degrades to a log line.
package notify

import (
	"fmt"
	"log"
	"os/exec"
)

type Notifier interface {
	RecordingStarted(id string)
	RecordingFinished(id string, transcriptPath string)
	Error(msg string)
}

// New picks the notifier for the configured type. Unknown types and
// disabled notifications both fall back to Nop.
func New(enabled bool, kind string) Notifier {
	if !enabled {
		return Nop{}
	}
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

type Desktop struct{}

func (Desktop) RecordingStarted(id string) {
	send(fmt.Sprintf("Rejoice: Recording %s started", id))
}

func (Desktop) RecordingFinished(id string, transcriptPath string) {
	send(fmt.Sprintf("Rejoice: Transcript %s saved to %s", id, transcriptPath))
}

func (Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", "Rejoice", "-u", "critical", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("notify: failed to send error notification: %v", err)
	}
}

func send(msg string) {
	cmd := exec.Command("notify-send", "-a", "Rejoice", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("notify: failed to send notification: %v", err)
	}
}

// Log writes notifications to the process log instead of the desktop.
type Log struct{}

func (Log) RecordingStarted(id string) {
	log.Printf("notify: recording %s started", id)
}

func (Log) RecordingFinished(id string, transcriptPath string) {
	log.Printf("notify: transcript %s saved to %s", id, transcriptPath)
}

func (Log) Error(msg string) {
	log.Printf("notify: error: %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) RecordingStarted(id string)                         {}
func (Nop) RecordingFinished(id string, transcriptPath string) {}
func (Nop) Error(msg string)                                   {}
