// Package realtime implements best-effort incremental transcription
// while a recording is still in progress. Confirmed text reaches the
// transcript early; nothing here may ever abort the recording itself.
package realtime

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rejoice-cli/rejoice/internal/recording"
	"github.com/rejoice-cli/rejoice/internal/transcriber"
	"github.com/rejoice-cli/rejoice/internal/transcript"
)

// State is the worker lifecycle. Transitions only move forward:
// Idle -> Running -> Draining -> Stopped.
type State int32

const (
	Idle State = iota
	Running
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

const (
	// DefaultMinWindow is the audio accumulated before a window is
	// transcribed. Tuned empirically; configurable, not an invariant.
	DefaultMinWindow = 1 * time.Second

	// DefaultStopTimeout bounds how long Stop waits for the consumer
	// loop to flush its last partial window.
	DefaultStopTimeout = 5 * time.Second

	// pollInterval is how often the consumer loop re-checks its queue
	// and the stop request.
	pollInterval = 100 * time.Millisecond
)

// Worker consumes audio chunks from an unbounded queue and appends
// confirmed text to the transcript while recording continues.
type Worker struct {
	engine     transcriber.Transcriber
	store      *transcript.Store
	sampleRate int
	minSamples int

	mu    sync.Mutex
	state State
	queue [][]byte

	done chan struct{}

	// processed counts transcribed windows; consumedBytes counts raw
	// audio handed to the engine. The orchestrator compares the latter
	// against the capture sink to find audio that never made it into a
	// live window. failed counts windows whose text never reached the
	// transcript; while it is nonzero the audio file is the only copy
	// of that speech.
	processedMu   sync.Mutex
	processed     int
	consumedBytes int
	failed        int
}

// New creates a worker appending through store. minWindow <= 0 means
// DefaultMinWindow.
func New(engine transcriber.Transcriber, store *transcript.Store, sampleRate int, minWindow time.Duration) *Worker {
	if minWindow <= 0 {
		minWindow = DefaultMinWindow
	}
	return &Worker{
		engine:     engine,
		store:      store,
		sampleRate: sampleRate,
		minSamples: int(minWindow.Seconds() * float64(sampleRate)),
		done:       make(chan struct{}),
	}
}

func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Start spawns the consumer loop. Calling Start twice is an error.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Idle {
		return fmt.Errorf("worker already started (state %s)", w.state)
	}
	w.state = Running

	go w.loop()
	log.Printf("worker: realtime transcription started (min window %d samples)", w.minSamples)
	return nil
}

// Enqueue hands one audio chunk to the worker. It never blocks: the
// queue grows instead of stalling the capture callback. Chunks
// arriving after a stop request are dropped, not queued.
func (w *Worker) Enqueue(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Running {
		return
	}
	owned := make([]byte, len(chunk))
	copy(owned, chunk)
	w.queue = append(w.queue, owned)
}

// Stop transitions to Draining and waits up to timeout for the loop
// to flush its final partial window and exit. A loop that misses the
// deadline is abandoned, not killed; that is logged and non-fatal.
func (w *Worker) Stop(timeout time.Duration) {
	w.mu.Lock()
	switch w.state {
	case Idle:
		w.state = Stopped
		close(w.done)
		w.mu.Unlock()
		return
	case Draining, Stopped:
		w.mu.Unlock()
		return
	}
	w.state = Draining
	w.mu.Unlock()

	select {
	case <-w.done:
	case <-time.After(timeout):
		log.Printf("worker: did not drain within %v, abandoning loop", timeout)
	}

	w.mu.Lock()
	w.state = Stopped
	w.mu.Unlock()
	log.Printf("worker: stopped")
}

// Finalize runs one more transcription pass over audio the worker
// could not consume live. Call after Stop. The returned error is
// informational: the audio file remains the recovery artifact and the
// caller decides how loudly to report it.
func (w *Worker) Finalize(ctx context.Context, remainingAudioPath string) error {
	if remainingAudioPath == "" {
		return nil
	}
	if _, err := os.Stat(remainingAudioPath); err != nil {
		return fmt.Errorf("remaining audio: %w", err)
	}
	if err := w.transcribeFile(ctx, remainingAudioPath); err != nil {
		log.Printf("worker: final pass failed: %v", err)
		return err
	}
	log.Printf("worker: final transcription pass completed")
	return nil
}

// Processed reports how many windows have been transcribed.
func (w *Worker) Processed() int {
	w.processedMu.Lock()
	defer w.processedMu.Unlock()
	return w.processed
}

// ConsumedBytes reports how much raw audio reached a transcription
// window, successfully or not. Audio beyond this offset was never
// attempted live.
func (w *Worker) ConsumedBytes() int {
	w.processedMu.Lock()
	defer w.processedMu.Unlock()
	return w.consumedBytes
}

// Failed reports how many live windows never got their text into the
// transcript. Nonzero means the recording's audio still holds speech
// the transcript is missing.
func (w *Worker) Failed() int {
	w.processedMu.Lock()
	defer w.processedMu.Unlock()
	return w.failed
}

func (w *Worker) markFailed() {
	w.processedMu.Lock()
	w.failed++
	w.processedMu.Unlock()
}

func (w *Worker) loop() {
	defer close(w.done)

	var buffer []byte
	for {
		chunks, draining := w.drainQueue()
		for _, c := range chunks {
			buffer = append(buffer, c...)
		}

		// Two bytes per s16 sample.
		if len(buffer)/2 >= w.minSamples {
			w.processWindow(buffer)
			buffer = buffer[:0]
		}

		if draining {
			break
		}
		if len(chunks) == 0 {
			time.Sleep(pollInterval)
		}
	}

	// Flush the last partial window even if under the threshold.
	if len(buffer) > 0 {
		w.processWindow(buffer)
	}
	log.Printf("worker: consumer loop finished")
}

func (w *Worker) drainQueue() ([][]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	chunks := w.queue
	w.queue = nil
	return chunks, w.state != Running
}

// processWindow transcribes one accumulated buffer. Errors are caught
// and logged: realtime transcription is best-effort and must never
// abort the recording.
func (w *Worker) processWindow(buffer []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("worker: panic in window processing: %v", r)
			w.markFailed()
		}
	}()

	w.processedMu.Lock()
	w.consumedBytes += len(buffer)
	w.processedMu.Unlock()

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("rejoice-window-%d.wav", time.Now().UnixNano()))
	wav := recording.EncodeWAV(buffer, w.sampleRate, 1)
	if err := os.WriteFile(tmpPath, wav, 0o600); err != nil {
		log.Printf("worker: write window temp file: %v", err)
		w.markFailed()
		return
	}
	defer os.Remove(tmpPath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.transcribeFile(ctx, tmpPath); err != nil {
		log.Printf("worker: window transcription failed: %v", err)
		w.markFailed()
		return
	}

	w.processedMu.Lock()
	w.processed++
	w.processedMu.Unlock()
}

func (w *Worker) transcribeFile(ctx context.Context, path string) error {
	segments, err := w.engine.Transcribe(ctx, path)
	if err != nil {
		return err
	}
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if err := w.store.Append(text); err != nil {
			return err
		}
	}
	return nil
}
