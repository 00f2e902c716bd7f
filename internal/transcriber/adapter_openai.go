package transcriber

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAITranscriber sends audio files to the OpenAI Whisper API.
type OpenAITranscriber struct {
	client *openai.Client
	config Config

	mu       sync.Mutex
	language string
}

func NewOpenAITranscriber(config Config) *OpenAITranscriber {
	return &OpenAITranscriber{
		client: openai.NewClient(config.APIKey),
		config: config,
	}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	return apiTranscribe(ctx, t.client, "openai", t.config, audioPath, &t.mu, &t.language)
}

func (t *OpenAITranscriber) DetectedLanguage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.language
}

// GroqTranscriber uses Groq's OpenAI-compatible transcription
// endpoint through the same client.
type GroqTranscriber struct {
	client *openai.Client
	config Config

	mu       sync.Mutex
	language string
}

func NewGroqTranscriber(config Config) *GroqTranscriber {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = "https://api.groq.com/openai/v1"
	return &GroqTranscriber{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (t *GroqTranscriber) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	return apiTranscribe(ctx, t.client, "groq", t.config, audioPath, &t.mu, &t.language)
}

func (t *GroqTranscriber) DetectedLanguage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.language
}

func apiTranscribe(ctx context.Context, client *openai.Client, provider string, config Config, audioPath string, mu *sync.Mutex, language *string) ([]Segment, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, &TranscriptionError{Provider: provider, Err: fmt.Errorf("audio file: %w", err)}
	}

	model := config.Model
	if model == "" {
		model = openai.Whisper1
	}
	lang := config.Language
	if lang == LanguageAuto {
		lang = "" // API auto-detects when unset
	}

	req := openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
		Language: lang,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	start := time.Now()
	resp, err := client.CreateTranscription(ctx, req)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("%s: API call failed after %v: %v", provider, duration, err)
		return nil, &TranscriptionError{Provider: provider, Err: err}
	}

	mu.Lock()
	if resp.Language != "" {
		*language = resp.Language
	} else {
		*language = lang
	}
	mu.Unlock()

	var segments []Segment
	for _, s := range resp.Segments {
		segments = append(segments, Segment{Text: s.Text, Start: s.Start, End: s.End})
	}
	if len(segments) == 0 && resp.Text != "" {
		segments = append(segments, Segment{Text: resp.Text})
	}

	log.Printf("%s: transcribed %s in %v (%d segments)", provider, audioPath, duration, len(segments))
	return segments, nil
}
