package transcript

import "errors"

// DurabilityError marks a failure to create or mutate a transcript
// file. It is fatal to the operation that raised it: the caller must
// surface the path so the user can recover manually.
type DurabilityError struct {
	Path string
	Err  error
}

func (e *DurabilityError) Error() string {
	if e == nil || e.Err == nil {
		return "transcript durability error"
	}
	return "transcript " + e.Path + ": " + e.Err.Error()
}

func (e *DurabilityError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsDurabilityError(err error) bool {
	var de *DurabilityError
	return errors.As(err, &de)
}

// MalformedTranscriptError means an existing file has no recognizable
// metadata delimiter pair. It is fatal to the specific mutation only.
type MalformedTranscriptError struct {
	Path   string
	Reason string
}

func (e *MalformedTranscriptError) Error() string {
	if e == nil {
		return "malformed transcript"
	}
	return "malformed transcript " + e.Path + ": " + e.Reason
}

func IsMalformedTranscriptError(err error) bool {
	var me *MalformedTranscriptError
	return errors.As(err, &me)
}
