// Package recording owns the lifecycle of one microphone capture
// stream. Audio is pulled from PipeWire via a pw-record subprocess;
// every captured block is handed to a caller-supplied callback on the
// capture goroutine.
package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	SampleRate int
	Channels   int
	Format     string
	BufferSize int
	Device     string
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Channels:   1,
		Format:     "s16",
		BufferSize: 4096,
		Device:     "",
	}
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", c.BufferSize)
	}
	if c.Format == "" {
		return fmt.Errorf("invalid Format: empty")
	}
	return nil
}

// FrameFunc receives one captured audio block. It is invoked on the
// capture goroutine and must not block beyond an in-memory copy and a
// non-blocking enqueue; stalling it drops samples.
type FrameFunc func(frame []byte)

// Session is one open microphone capture stream. Close exactly once
// when recording stops; frames stop arriving after Close returns.
type Session struct {
	config   Config
	onFrames FrameFunc

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	closed atomic.Bool
	wg     sync.WaitGroup
}

// Open starts a hardware input stream and begins delivering frames to
// onFrames. Both failure modes surface as *CaptureUnavailableError so
// the caller can tell "install the dependency" apart from "free up
// the device". Only after Open returns is audio actually flowing.
func Open(ctx context.Context, config Config, onFrames FrameFunc) (*Session, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if onFrames == nil {
		return nil, fmt.Errorf("onFrames callback required")
	}

	if err := checkPipeWire(ctx); err != nil {
		return nil, err
	}

	captureCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		config:   config,
		onFrames: onFrames,
		cancel:   cancel,
	}

	cmd := exec.CommandContext(captureCtx, "pw-record", s.buildArgs()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &CaptureUnavailableError{Kind: DeviceUnavailable, Err: fmt.Errorf("create stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, &CaptureUnavailableError{Kind: DeviceUnavailable, Err: fmt.Errorf("create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &CaptureUnavailableError{Kind: DeviceUnavailable, Err: fmt.Errorf("start pw-record: %w", err)}
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	// Surface pw-record diagnostics without letting them reach stdout.
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("recording: pw-record: %s", scanner.Text())
		}
	}()

	s.wg.Add(1)
	go s.captureLoop(captureCtx, stdout)

	log.Printf("recording: capture open (rate=%d channels=%d device=%q)",
		config.SampleRate, config.Channels, config.Device)
	return s, nil
}

// Close stops the stream and releases the subprocess. It is
// idempotent, and errors during teardown are logged, never returned:
// capture teardown must not prevent transcript finalization.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()

	if cmd != nil {
		if err := cmd.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("recording: pw-record exit: %v", err)
		}
	}
	log.Printf("recording: capture closed")
}

func (s *Session) captureLoop(ctx context.Context, stdout io.Reader) {
	defer s.wg.Done()

	buffer := make([]byte, s.config.BufferSize)
	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			frame := make([]byte, n)
			copy(frame, buffer[:n])
			s.onFrames(frame)
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && ctx.Err() == nil {
				log.Printf("recording: read audio: %v", readErr)
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (s *Session) buildArgs() []string {
	args := []string{
		"--format", s.config.Format,
		"--rate", strconv.Itoa(s.config.SampleRate),
		"--channels", strconv.Itoa(s.config.Channels),
		"-",
	}
	if s.config.Device != "" {
		args = append(args, "--target", s.config.Device)
	}
	return args
}

func checkPipeWire(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return &CaptureUnavailableError{Kind: DependencyMissing, Err: err}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, "pw-cli", "info").Run(); err != nil {
		return &CaptureUnavailableError{Kind: DeviceUnavailable, Err: fmt.Errorf("pw-cli info: %w", err)}
	}
	return nil
}
