package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// WhisperCppTranscriber runs local transcription through the
// whisper-cli binary from whisper.cpp.
type WhisperCppTranscriber struct {
	config Config

	mu       sync.Mutex
	language string
}

func NewWhisperCppTranscriber(config Config) *WhisperCppTranscriber {
	return &WhisperCppTranscriber{config: config}
}

func (t *WhisperCppTranscriber) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, &TranscriptionError{Provider: "whisper-cpp", Err: fmt.Errorf("audio file: %w", err)}
	}

	whisperPath, err := exec.LookPath("whisper-cli")
	if err != nil {
		return nil, &TranscriptionError{Provider: "whisper-cpp", Err: fmt.Errorf("whisper-cli not found: install whisper.cpp first")}
	}

	modelPath := t.config.Model
	if modelPath == "" {
		modelPath = defaultModelPath()
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, &TranscriptionError{Provider: "whisper-cpp", Err: fmt.Errorf("model file not found: %s", modelPath)}
	}

	lang := t.config.Language
	if lang == "" {
		lang = LanguageAuto
	}

	args := []string{
		"-m", modelPath,
		"-l", lang,
		"-nt", // no timestamps
		"-np", // no progress
		"-f", audioPath,
	}
	if t.config.Threads > 0 {
		args = append(args, "-t", fmt.Sprintf("%d", t.config.Threads))
	}

	cmd := exec.CommandContext(ctx, whisperPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("whisper-cpp: command failed after %v: %v\nstderr: %s", duration, err, stderr.String())
		return nil, &TranscriptionError{Provider: "whisper-cpp", Err: fmt.Errorf("whisper-cli failed: %w", err)}
	}

	t.mu.Lock()
	t.language = parseDetectedLanguage(stderr.String(), lang)
	t.mu.Unlock()

	text := strings.TrimSpace(stdout.String())
	log.Printf("whisper-cpp: transcribed %s in %v", audioPath, duration)
	if text == "" {
		return nil, nil
	}
	return []Segment{{Text: text}}, nil
}

func (t *WhisperCppTranscriber) DetectedLanguage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.language
}

// parseDetectedLanguage pulls the detected language out of
// whisper-cli's stderr ("auto-detected language: en (p = 0.97)").
// When a language was forced, that is the effective language.
func parseDetectedLanguage(stderr, requested string) string {
	if requested != "" && requested != LanguageAuto {
		return requested
	}
	const marker = "auto-detected language:"
	idx := strings.Index(stderr, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(stderr[idx+len(marker):])
	if cut := strings.IndexAny(rest, " \n("); cut > 0 {
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}

func defaultModelPath() string {
	dataDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dataDir, ".local", "share", "rejoice", "models", "ggml-base.bin")
}
