// Package session orchestrates one recording: transcript creation,
// audio capture, the live display, stop/cancel handling and
// finalization. Its promise is that captured speech is never silently
// lost; every exit path leaves either a transcript, an audio file, or
// both on disk.
package session

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rejoice-cli/rejoice/internal/config"
	"github.com/rejoice-cli/rejoice/internal/notify"
	"github.com/rejoice-cli/rejoice/internal/realtime"
	"github.com/rejoice-cli/rejoice/internal/recording"
	"github.com/rejoice-cli/rejoice/internal/transcriber"
	"github.com/rejoice-cli/rejoice/internal/transcript"
	"github.com/rejoice-cli/rejoice/internal/tui"
)

const (
	// displayInterval paces the live panel repaint and the control
	// loop's signal polling.
	displayInterval = 100 * time.Millisecond

	// displayJoinTimeout bounds how long teardown waits for the display
	// goroutine. A wedged terminal must not hold the transcript hostage.
	displayJoinTimeout = time.Second

	// finalPassTimeout bounds the post-recording transcription. Long
	// recordings on slow local models take a while.
	finalPassTimeout = 10 * time.Minute
)

// Capture is the live audio source. recording.Session satisfies it.
type Capture interface {
	Close()
}

// Prompter carries the session's interactive decisions. tui.Prompter
// is the terminal implementation.
type Prompter interface {
	ConfirmCancel() bool
	ConfirmDeleteTranscript() bool
	ConfirmDeleteAudio() bool
}

// Deps are the session's collaborators. Zero fields are filled with
// the real implementations; tests inject fakes.
type Deps struct {
	OpenCapture    func(ctx context.Context, cfg recording.Config, onFrames recording.FrameFunc) (Capture, error)
	NewTranscriber func(cfg transcriber.Config) (transcriber.Transcriber, error)
	Notifier       notify.Notifier
	Prompter       Prompter
	Render         func(frame string)
	CloseDisplay   func()
	WaitInput      func()
	Now            func() time.Time
}

// Result reports what a session left on disk. It is meaningful even
// when Run also returns an error: the transcript path and ID are valid
// from the moment the file is created.
type Result struct {
	TranscriptPath    string
	ID                transcript.ID
	Status            transcript.Status
	TranscriptDeleted bool
	AudioPath         string // empty when the audio was not kept
	Duration          time.Duration
	TranscribedOK     bool
}

type Session struct {
	cfg  *config.Config
	deps Deps

	sig    Signal
	meter  recording.Meter
	paused atomic.Bool

	// interactiveCancel distinguishes a cancel the user confirmed at
	// the terminal from SIGTERM or parent-context cancellation, where
	// nobody is present to answer prompts.
	interactiveCancel atomic.Bool
}

func New(cfg *config.Config, deps Deps) *Session {
	if deps.OpenCapture == nil {
		deps.OpenCapture = func(ctx context.Context, rc recording.Config, onFrames recording.FrameFunc) (Capture, error) {
			return recording.Open(ctx, rc, onFrames)
		}
	}
	if deps.NewTranscriber == nil {
		deps.NewTranscriber = transcriber.New
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.New(cfg.Notifications.Enabled, cfg.Notifications.Type)
	}
	if deps.Prompter == nil {
		deps.Prompter = tui.Prompter{}
	}
	if deps.Render == nil {
		display := tui.NewLiveDisplay(os.Stdout)
		deps.Render = display.Render
		if deps.CloseDisplay == nil {
			deps.CloseDisplay = display.Close
		}
	}
	if deps.WaitInput == nil {
		deps.WaitInput = func() {
			bufio.NewReader(os.Stdin).ReadString('\n')
		}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Session{cfg: cfg, deps: deps}
}

// Run drives the session to completion or cancellation. The returned
// Result names whatever the session left behind even on error.
func (s *Session) Run(ctx context.Context) (Result, error) {
	saveDir := s.cfg.ExpandedSavePath()

	path, id, err := transcript.Create(saveDir)
	if err != nil {
		return Result{}, err
	}
	store := transcript.NewStore(path)
	result := Result{TranscriptPath: path, ID: id, Status: transcript.StatusRecording}
	log.Printf("session: transcript %s created at %s", id, path)

	engine, err := s.deps.NewTranscriber(s.cfg.ToTranscriberConfig())
	if err != nil {
		return result, fmt.Errorf("create transcriber: %w", err)
	}

	// Raw audio lands next to the transcript under a dot name, so a
	// crash leaves the recording recoverable without the listing
	// commands picking up the partial file.
	rawAudioPath := filepath.Join(saveDir, fmt.Sprintf(".%s_audio.partial.wav", id))
	sink, err := recording.NewWAVWriter(rawAudioPath, s.cfg.Audio.SampleRate, s.cfg.Audio.Channels)
	if err != nil {
		return result, fmt.Errorf("open audio sink: %w", err)
	}

	var worker *realtime.Worker
	if s.cfg.Transcription.Realtime {
		worker = realtime.New(engine, store, s.cfg.Audio.SampleRate, s.cfg.Transcription.MinWindow)
		if err := worker.Start(); err != nil {
			sink.Close()
			os.Remove(rawAudioPath)
			return result, err
		}
	}

	onFrames := func(frame []byte) {
		if _, err := sink.Write(frame); err != nil {
			log.Printf("session: audio sink write failed: %v", err)
		}
		s.meter.Update(frame)
		if worker != nil {
			worker.Enqueue(frame)
		}
	}

	capture, err := s.deps.OpenCapture(ctx, s.cfg.ToRecordingConfig(), onFrames)
	if err != nil {
		if worker != nil {
			worker.Stop(s.cfg.Transcription.StopTimeout)
		}
		sink.Close()
		os.Remove(rawAudioPath)
		return result, err
	}

	started := s.deps.Now()
	s.deps.Notifier.RecordingStarted(id.String())

	displayDone := s.startDisplay(id, started, worker != nil)
	go func() {
		s.deps.WaitInput()
		s.sig.RequestStop()
	}()

	s.wait(ctx)

	// Teardown order is fixed: stop the capture and close the sink
	// before joining any observer, so no callback can touch a closed
	// file and the audio is complete before finalization reads it.
	capture.Close()
	if err := sink.Close(); err != nil {
		log.Printf("session: close audio sink: %v", err)
	}
	result.Duration = time.Duration(sink.Duration() * float64(time.Second))

	select {
	case <-displayDone:
	case <-time.After(displayJoinTimeout):
		log.Printf("session: display loop missed the %v join deadline, abandoning", displayJoinTimeout)
	}
	if s.deps.CloseDisplay != nil {
		s.deps.CloseDisplay()
	}

	if worker != nil {
		worker.Stop(s.cfg.Transcription.StopTimeout)
	}

	if s.sig.State() == CancelRequested {
		return s.finishCancelled(store, result, rawAudioPath)
	}
	return s.finishCompleted(engine, worker, store, result, rawAudioPath, sink.DataBytes(), started)
}

func (s *Session) startDisplay(id transcript.ID, started time.Time, live bool) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(displayInterval)
		defer ticker.Stop()
		for s.sig.State() == Running {
			if !s.paused.Load() {
				elapsed := s.deps.Now().Sub(started)
				s.deps.Render(tui.RecordingPanel(id.String(), elapsed, s.meter.Value(), live))
			}
			<-ticker.C
		}
	}()
	return done
}

// wait blocks until a stop or cancel request. Enter (via WaitInput)
// requests a clean stop. SIGINT opens a cancel prompt where declining
// resumes the recording untouched. SIGTERM and context cancellation
// cancel without asking; there is nobody at the terminal to ask.
func (s *Session) wait(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(displayInterval)
	defer ticker.Stop()
	for s.sig.State() == Running {
		select {
		case <-ticker.C:
		case got := <-sigCh:
			if got == syscall.SIGTERM {
				s.sig.RequestCancel()
				continue
			}
			s.paused.Store(true)
			if s.deps.Prompter.ConfirmCancel() {
				s.interactiveCancel.Store(true)
				s.sig.RequestCancel()
			}
			s.paused.Store(false)
		case <-ctx.Done():
			s.sig.RequestCancel()
		}
	}
}

func (s *Session) finishCancelled(store *transcript.Store, result Result, rawAudioPath string) (Result, error) {
	if err := os.Remove(rawAudioPath); err != nil && !os.IsNotExist(err) {
		log.Printf("session: remove partial audio: %v", err)
	}

	result.Status = transcript.StatusCancelled

	// Non-interactive cancels (SIGTERM, parent context) keep the
	// transcript without asking; there is nobody to answer a prompt.
	if s.interactiveCancel.Load() && s.deps.Prompter.ConfirmDeleteTranscript() {
		if err := os.Remove(result.TranscriptPath); err != nil && !os.IsNotExist(err) {
			log.Printf("session: delete transcript: %v", err)
		} else {
			result.TranscriptDeleted = true
		}
		log.Printf("session: recording %s cancelled, transcript deleted", result.ID)
		return result, nil
	}

	if err := store.SetStatus(transcript.StatusCancelled); err != nil {
		log.Printf("session: mark transcript cancelled: %v", err)
		return result, err
	}
	log.Printf("session: recording %s cancelled, transcript kept", result.ID)
	return result, nil
}

func (s *Session) finishCompleted(engine transcriber.Transcriber, worker *realtime.Worker, store *transcript.Store, result Result, rawAudioPath string, dataBytes int, started time.Time) (Result, error) {
	saveDir := filepath.Dir(result.TranscriptPath)

	// Archive the audio under its durable name before transcribing, so
	// a failed transcription points the user at the file that survives.
	audioPath := filepath.Join(saveDir, transcript.NewName(result.ID, started).AudioFilename())
	if err := os.Rename(rawAudioPath, audioPath); err != nil {
		log.Printf("session: archive audio: %v", err)
		audioPath = rawAudioPath
	}
	if err := store.SetAudioFile(filepath.Base(audioPath)); err != nil {
		log.Printf("session: record audio filename: %v", err)
	}
	result.AudioPath = audioPath

	fctx, cancel := context.WithTimeout(context.Background(), finalPassTimeout)
	defer cancel()
	result.TranscribedOK = s.finalPass(fctx, engine, worker, store, audioPath, dataBytes)

	if detected := engine.DetectedLanguage(); result.TranscribedOK && detected != "" {
		if err := store.SetLanguage(detected); err != nil {
			log.Printf("session: record detected language: %v", err)
		}
	}

	// Status moves to completed even when transcription failed; the
	// recording itself finished and the audio holds the content.
	if err := store.SetStatus(transcript.StatusCompleted); err != nil {
		return result, err
	}
	result.Status = transcript.StatusCompleted

	s.applyAudioRetention(&result)

	s.deps.Notifier.RecordingFinished(result.ID.String(), result.TranscriptPath)
	log.Printf("session: recording %s completed (%s)", result.ID, result.TranscriptPath)
	return result, nil
}

// finalPass makes sure every captured byte got a transcription
// attempt. Without the live worker that is the whole file; with it,
// only the tail the worker never consumed.
func (s *Session) finalPass(ctx context.Context, engine transcriber.Transcriber, worker *realtime.Worker, store *transcript.Store, audioPath string, dataBytes int) bool {
	if worker == nil {
		if err := transcribeInto(ctx, engine, store, audioPath); err != nil {
			log.Printf("session: transcription failed, audio kept for recovery at %s: %v", audioPath, err)
			s.deps.Notifier.Error(fmt.Sprintf("Transcription failed, audio kept at %s", audioPath))
			return false
		}
		return true
	}

	ok := true
	if failed := worker.Failed(); failed > 0 {
		log.Printf("session: %d live window(s) failed transcription, audio kept for recovery at %s", failed, audioPath)
		ok = false
	}

	if remainder := dataBytes - worker.ConsumedBytes(); remainder > 0 {
		log.Printf("session: %d bytes of audio missed the live pass, transcribing remainder", remainder)
		remainderPath, err := s.writeRemainder(audioPath, remainder)
		if err != nil {
			log.Printf("session: extract remainder: %v", err)
			ok = false
		} else {
			defer os.Remove(remainderPath)
			if err := worker.Finalize(ctx, remainderPath); err != nil {
				ok = false
			}
		}
	}

	if !ok {
		s.deps.Notifier.Error(fmt.Sprintf("Transcription incomplete, audio kept at %s", audioPath))
	}
	return ok
}

// writeRemainder extracts the trailing PCM the live worker never saw
// into its own WAV file.
func (s *Session) writeRemainder(audioPath string, remainder int) (string, error) {
	raw, err := os.ReadFile(audioPath)
	if err != nil {
		return "", err
	}
	const headerLen = 44
	if len(raw) <= headerLen {
		return "", fmt.Errorf("audio file %s shorter than its header", audioPath)
	}
	pcm := raw[headerLen:]
	if remainder > len(pcm) {
		remainder = len(pcm)
	}
	tail := pcm[len(pcm)-remainder:]

	path := filepath.Join(os.TempDir(), fmt.Sprintf("rejoice-remainder-%d.wav", time.Now().UnixNano()))
	wav := recording.EncodeWAV(tail, s.cfg.Audio.SampleRate, s.cfg.Audio.Channels)
	if err := os.WriteFile(path, wav, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// applyAudioRetention decides what happens to the archived audio. A
// failed transcription always keeps it: the audio is then the only
// copy of what was said.
func (s *Session) applyAudioRetention(result *Result) {
	if !result.TranscribedOK || result.AudioPath == "" {
		return
	}
	switch {
	case s.cfg.Audio.AutoDelete:
	case s.cfg.Audio.KeepAfterTranscription:
		return
	default:
		if !s.deps.Prompter.ConfirmDeleteAudio() {
			return
		}
	}
	if err := os.Remove(result.AudioPath); err != nil {
		log.Printf("session: delete audio: %v", err)
		return
	}
	log.Printf("session: audio %s deleted after transcription", filepath.Base(result.AudioPath))
	result.AudioPath = ""
}

func transcribeInto(ctx context.Context, engine transcriber.Transcriber, store *transcript.Store, audioPath string) error {
	segments, err := engine.Transcribe(ctx, audioPath)
	if err != nil {
		return err
	}
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if err := store.Append(text); err != nil {
			return err
		}
	}
	return nil
}
