package recording

import "errors"

// UnavailableKind classifies why capture could not be opened, so the
// CLI can tell the user what to fix.
type UnavailableKind int

const (
	// DependencyMissing means the capture tooling is not installed.
	DependencyMissing UnavailableKind = iota
	// DeviceUnavailable means the tooling exists but the audio server
	// or device refused us (not running, busy, or access denied).
	DeviceUnavailable
)

// CaptureUnavailableError is fatal to session start. The transcript
// created before capture was attempted is left on disk for the user.
type CaptureUnavailableError struct {
	Kind UnavailableKind
	Err  error
}

func (e *CaptureUnavailableError) Error() string {
	if e == nil {
		return "audio capture unavailable"
	}
	switch e.Kind {
	case DependencyMissing:
		return "audio capture unavailable: pw-record not found (install pipewire-tools): " + e.Err.Error()
	case DeviceUnavailable:
		return "audio capture unavailable: audio device not accessible (is PipeWire running? is another app holding the microphone?): " + e.Err.Error()
	}
	return "audio capture unavailable: " + e.Err.Error()
}

func (e *CaptureUnavailableError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsCaptureUnavailable(err error) bool {
	var ce *CaptureUnavailableError
	return errors.As(err, &ce)
}
