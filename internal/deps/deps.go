// Package deps probes the external tools the recorder shells out to,
// so failures like a missing pw-record can be diagnosed up front
// instead of mid-session.
package deps

import (
	"os/exec"
	"strings"

	"github.com/rejoice-cli/rejoice/internal/config"
)

// Status reports whether one external binary is available.
type Status struct {
	Name      string
	Installed bool
	Path      string
	Version   string
	Purpose   string
	Required  bool
}

// Check looks up a binary on PATH and, when found, asks it for its
// version string. A failing version probe still counts as installed.
func Check(name, versionFlag string) Status {
	path, err := exec.LookPath(name)
	if err != nil {
		return Status{Name: name, Installed: false}
	}

	status := Status{Name: name, Installed: true, Path: path}

	if versionFlag != "" {
		output, err := exec.Command(path, versionFlag).Output()
		if err == nil {
			lines := strings.Split(string(output), "\n")
			if len(lines) > 0 {
				status.Version = strings.TrimSpace(lines[0])
			}
		}
	}

	return status
}

// CheckAll probes every binary the current configuration can reach.
// pw-record is always required; the rest depend on the configured
// provider and notification type.
func CheckAll(cfg *config.Config) []Status {
	statuses := []Status{}

	s := Check("pw-record", "--version")
	s.Purpose = "audio capture (PipeWire)"
	s.Required = true
	statuses = append(statuses, s)

	s = Check("whisper-cli", "--version")
	s.Purpose = "local transcription (whisper.cpp)"
	s.Required = cfg.Transcription.Provider == "whisper-cpp"
	statuses = append(statuses, s)

	s = Check("notify-send", "--version")
	s.Purpose = "desktop notifications"
	s.Required = cfg.Notifications.Enabled && cfg.Notifications.Type == "desktop"
	statuses = append(statuses, s)

	return statuses
}

// MissingRequired filters CheckAll output down to required binaries
// that are not installed.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if s.Required && !s.Installed {
			missing = append(missing, s)
		}
	}
	return missing
}
