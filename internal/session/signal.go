package session

import "sync/atomic"

// SignalState describes why the session loop should keep running or
// wind down. Zero value is Running.
type SignalState int32

const (
	Running SignalState = iota
	StopRequested
	CancelRequested
)

func (s SignalState) String() string {
	switch s {
	case Running:
		return "running"
	case StopRequested:
		return "stop-requested"
	case CancelRequested:
		return "cancel-requested"
	}
	return "unknown"
}

// Signal is the session's stop control. It is monotonic: the first
// request wins and later ones are ignored, so a stop and a cancel
// racing each other can never flip the outcome back and forth.
type Signal struct {
	v atomic.Int32
}

func (s *Signal) State() SignalState {
	return SignalState(s.v.Load())
}

// RequestStop asks for a clean stop. Reports whether this call was the
// one that ended the Running state.
func (s *Signal) RequestStop() bool {
	return s.v.CompareAndSwap(int32(Running), int32(StopRequested))
}

// RequestCancel asks to discard the session. Reports whether this call
// was the one that ended the Running state.
func (s *Signal) RequestCancel() bool {
	return s.v.CompareAndSwap(int32(Running), int32(CancelRequested))
}
