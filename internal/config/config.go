package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rejoice-cli/rejoice/internal/recording"
	"github.com/rejoice-cli/rejoice/internal/transcriber"
)

type Config struct {
	Output        OutputConfig        `toml:"output"`
	Audio         AudioConfig         `toml:"audio"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type OutputConfig struct {
	SavePath string `toml:"save_path"`
}

type AudioConfig struct {
	SampleRate             int    `toml:"sample_rate"`
	Channels               int    `toml:"channels"`
	BufferSize             int    `toml:"buffer_size"`
	Device                 string `toml:"device"`
	KeepAfterTranscription bool   `toml:"keep_after_transcription"`
	AutoDelete             bool   `toml:"auto_delete"`
}

type TranscriptionConfig struct {
	Provider    string        `toml:"provider"`
	APIKey      string        `toml:"api_key"`
	Model       string        `toml:"model"`
	Language    string        `toml:"language"`
	Realtime    bool          `toml:"realtime"`
	MinWindow   time.Duration `toml:"min_window"`
	StopTimeout time.Duration `toml:"stop_timeout"`
	Threads     int           `toml:"threads"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

// ExpandedSavePath resolves a leading "~" against the user's home
// directory. The raw value is kept as written so saving the config
// back does not bake in an absolute path.
func (c *Config) ExpandedSavePath() string {
	path := c.Output.SavePath
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate: c.Audio.SampleRate,
		Channels:   c.Audio.Channels,
		Format:     "s16",
		BufferSize: c.Audio.BufferSize,
		Device:     c.Audio.Device,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	config := transcriber.Config{
		Provider: c.Transcription.Provider,
		APIKey:   c.Transcription.APIKey,
		Language: c.Transcription.Language,
		Model:    c.Transcription.Model,
		Threads:  c.Transcription.Threads,
	}

	if config.APIKey == "" {
		switch config.Provider {
		case "openai":
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			config.APIKey = os.Getenv("GROQ_API_KEY")
		}
	}

	return config
}

func (c *Config) Validate() error {
	// Output
	if c.Output.SavePath == "" {
		return fmt.Errorf("invalid output.save_path: empty")
	}

	// Audio
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid audio.sample_rate: %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("invalid audio.channels: %d", c.Audio.Channels)
	}
	if c.Audio.BufferSize <= 0 {
		return fmt.Errorf("invalid audio.buffer_size: %d", c.Audio.BufferSize)
	}
	if c.Audio.KeepAfterTranscription && c.Audio.AutoDelete {
		return fmt.Errorf("audio.keep_after_transcription and audio.auto_delete are mutually exclusive")
	}

	// Transcription
	validProviders := map[string]bool{"whisper-cpp": true, "openai": true, "groq": true}
	if !validProviders[c.Transcription.Provider] {
		return fmt.Errorf("invalid transcription.provider: %s (must be whisper-cpp, openai, or groq)", c.Transcription.Provider)
	}
	if c.Transcription.Provider == "openai" || c.Transcription.Provider == "groq" {
		if c.ToTranscriberConfig().APIKey == "" {
			return fmt.Errorf("%s API key required: not found in config (transcription.api_key) or environment", c.Transcription.Provider)
		}
	}
	if lang := c.Transcription.Language; lang != "" && lang != transcriber.LanguageAuto && !isValidLanguageCode(lang) {
		return fmt.Errorf("invalid transcription.language: %s (use \"auto\" or ISO-639-1 codes like 'en', 'es', 'fr')", lang)
	}
	if c.Transcription.MinWindow <= 0 {
		return fmt.Errorf("invalid transcription.min_window: %v", c.Transcription.MinWindow)
	}
	if c.Transcription.StopTimeout <= 0 {
		return fmt.Errorf("invalid transcription.stop_timeout: %v", c.Transcription.StopTimeout)
	}
	if c.Transcription.Threads < 0 {
		return fmt.Errorf("invalid transcription.threads: %d", c.Transcription.Threads)
	}

	// Notifications
	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

func isValidLanguageCode(code string) bool {
	validCodes := map[string]bool{
		"en": true, "es": true, "fr": true, "de": true, "it": true, "pt": true,
		"ru": true, "ja": true, "ko": true, "zh": true, "ar": true, "hi": true,
		"nl": true, "sv": true, "da": true, "no": true, "fi": true, "pl": true,
		"tr": true, "he": true, "th": true, "vi": true, "id": true, "ms": true,
		"uk": true, "cs": true, "hu": true, "ro": true, "bg": true, "hr": true,
		"sk": true, "sl": true, "et": true, "lv": true, "lt": true, "mt": true,
		"cy": true, "ga": true, "eu": true, "ca": true, "gl": true, "is": true,
		"mk": true, "sq": true, "az": true, "be": true, "ka": true, "hy": true,
		"kk": true, "ky": true, "tg": true, "uz": true, "mn": true, "ne": true,
		"si": true, "km": true, "lo": true, "my": true, "fa": true, "ps": true,
		"ur": true, "bn": true, "ta": true, "te": true, "ml": true, "kn": true,
		"gu": true, "pa": true, "or": true, "as": true, "mr": true, "sa": true,
		"sw": true, "yo": true, "ig": true, "ha": true, "zu": true, "xh": true,
		"af": true, "am": true, "mg": true, "so": true, "sn": true, "rw": true,
	}
	return validCodes[code]
}
