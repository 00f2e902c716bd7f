// Package transcriber defines the transcription capability consumed
// by the recording session and the realtime worker, and its backend
// adapters. Engines are treated as black boxes: potentially slow,
// potentially failing, never assumed idempotent-fast.
package transcriber

import (
	"context"
	"fmt"
	"os"
)

// LanguageAuto asks the engine to detect the spoken language itself.
const LanguageAuto = "auto"

// Segment is one confirmed piece of transcribed speech.
type Segment struct {
	Text  string
	Start float64 // seconds from the start of the audio
	End   float64
}

// Transcriber transcribes a whole audio file. DetectedLanguage
// reports the language the engine settled on during the most recent
// Transcribe call, or "" if the engine does not detect languages.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
	DetectedLanguage() string
}

type Config struct {
	Provider string
	APIKey   string
	Language string // ISO code, or "auto" / "" for detection
	Model    string
	Threads  int // CPU threads for local transcription (0 = auto)
}

func DefaultConfig() Config {
	return Config{
		Provider: "whisper-cpp",
		Language: LanguageAuto,
	}
}

// New creates the adapter for the configured provider.
func New(config Config) (Transcriber, error) {
	switch config.Provider {
	case "whisper-cpp":
		return NewWhisperCppTranscriber(config), nil

	case "openai":
		if config.APIKey == "" {
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required: set transcription.api_key or OPENAI_API_KEY")
		}
		return NewOpenAITranscriber(config), nil

	case "groq":
		if config.APIKey == "" {
			config.APIKey = os.Getenv("GROQ_API_KEY")
		}
		if config.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required: set transcription.api_key or GROQ_API_KEY")
		}
		return NewGroqTranscriber(config), nil

	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", config.Provider)
	}
}
