package transcriber

import "errors"

// TranscriptionError marks an engine failure. It is recoverable: the
// caller logs it, keeps the audio file as the recovery artifact, and
// carries on.
type TranscriptionError struct {
	Provider string
	Err      error
}

func (e *TranscriptionError) Error() string {
	if e == nil || e.Err == nil {
		return "transcription error"
	}
	return e.Provider + " transcription: " + e.Err.Error()
}

func (e *TranscriptionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsTranscriptionError(err error) bool {
	var te *TranscriptionError
	return errors.As(err, &te)
}
