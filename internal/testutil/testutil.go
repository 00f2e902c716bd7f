// Package testutil holds the fakes shared by the session, realtime
// and command tests: a scripted transcriber, a frame-pumping capture,
// a canned prompter and an event log for ordering assertions.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rejoice-cli/rejoice/internal/config"
	"github.com/rejoice-cli/rejoice/internal/recording"
	"github.com/rejoice-cli/rejoice/internal/transcriber"
)

// TestConfig returns a valid configuration writing into a per-test
// temp directory. Realtime is off by default; tests that exercise the
// worker flip it on.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Output.SavePath = t.TempDir()
	cfg.Transcription.Realtime = false
	cfg.Transcription.MinWindow = 50 * time.Millisecond
	cfg.Transcription.StopTimeout = 2 * time.Second
	cfg.Transcription.Threads = 1
	cfg.Notifications.Enabled = false
	return cfg
}

// FakeTranscriber implements transcriber.Transcriber with scripted
// behavior and records every audio path it was asked to transcribe.
type FakeTranscriber struct {
	Segments       []transcriber.Segment
	Err            error
	Language       string
	TranscribeFunc func(ctx context.Context, audioPath string) ([]transcriber.Segment, error)

	mu    sync.Mutex
	calls []string
}

func (f *FakeTranscriber) Transcribe(ctx context.Context, audioPath string) ([]transcriber.Segment, error) {
	f.mu.Lock()
	f.calls = append(f.calls, audioPath)
	f.mu.Unlock()

	if f.TranscribeFunc != nil {
		return f.TranscribeFunc(ctx, audioPath)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Segments != nil {
		return f.Segments, nil
	}
	return []transcriber.Segment{{Text: "mock transcription"}}, nil
}

func (f *FakeTranscriber) DetectedLanguage() string {
	return f.Language
}

// Calls returns the transcribed audio paths in order.
func (f *FakeTranscriber) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// FakeCapture pumps a fixed frame into the capture callback until
// closed, standing in for the pw-record subprocess.
type FakeCapture struct {
	OnClose func()

	once sync.Once
	stop chan struct{}
}

// StartFakeCapture begins delivering frame through onFrames every
// interval until Close.
func StartFakeCapture(onFrames recording.FrameFunc, frame []byte, interval time.Duration) *FakeCapture {
	c := &FakeCapture{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				onFrames(frame)
			}
		}
	}()
	return c
}

func (c *FakeCapture) Close() {
	c.once.Do(func() {
		close(c.stop)
		if c.OnClose != nil {
			c.OnClose()
		}
	})
}

// FakePrompter answers every confirm prompt from canned fields and
// counts how often each was asked.
type FakePrompter struct {
	CancelAnswer           bool
	DeleteTranscriptAnswer bool
	DeleteAudioAnswer      bool

	mu                    sync.Mutex
	cancelAsked           int
	deleteTranscriptAsked int
	deleteAudioAsked      int
}

func (p *FakePrompter) ConfirmCancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelAsked++
	return p.CancelAnswer
}

func (p *FakePrompter) ConfirmDeleteTranscript() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteTranscriptAsked++
	return p.DeleteTranscriptAnswer
}

func (p *FakePrompter) ConfirmDeleteAudio() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteAudioAsked++
	return p.DeleteAudioAnswer
}

func (p *FakePrompter) CancelAsked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelAsked
}

func (p *FakePrompter) DeleteTranscriptAsked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deleteTranscriptAsked
}

func (p *FakePrompter) DeleteAudioAsked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deleteAudioAsked
}

// EventLog records named events so tests can assert ordering across
// goroutines.
type EventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *EventLog) Record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *EventLog) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// Index returns the position of the first occurrence of event, or -1.
func (l *EventLog) Index(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.events {
		if e == event {
			return i
		}
	}
	return -1
}

// WaitForCondition polls until the condition holds or the timeout
// expires, failing the test on expiry.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
