package config

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rejoice-cli/rejoice/internal/atomicfile"
)

func Default() *Config {
	return &Config{
		Output: OutputConfig{
			SavePath: "~/Documents/transcripts",
		},
		Audio: AudioConfig{
			SampleRate:             16000,
			Channels:               1,
			BufferSize:             4096,
			Device:                 "",
			KeepAfterTranscription: false,
			AutoDelete:             false,
		},
		Transcription: TranscriptionConfig{
			Provider:    "whisper-cpp",
			APIKey:      "",
			Model:       "",
			Language:    "auto",
			Realtime:    true,
			MinWindow:   time.Second,
			StopTimeout: 5 * time.Second,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
	}
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	rejoiceDir := filepath.Join(configDir, "rejoice")
	if err := os.MkdirAll(rejoiceDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(rejoiceDir, "config.toml"), nil
}

// Load reads the config file, creating it with defaults on first run,
// then applies REJOICE_* environment overrides. The result is a
// snapshot: later edits to the file do not affect a running session.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("config: no config file found at %s, creating with defaults", configPath)
		if err := SaveDefaultConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	config.applyEnvOverrides()
	config.applyDefaults()

	return &config, nil
}

// applyEnvOverrides lets environment variables win over the file, so
// one-off runs can redirect output or switch providers without edits.
func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"REJOICE_OUTPUT_SAVE_PATH", &c.Output.SavePath},
		{"REJOICE_AUDIO_DEVICE", &c.Audio.Device},
		{"REJOICE_TRANSCRIPTION_PROVIDER", &c.Transcription.Provider},
		{"REJOICE_TRANSCRIPTION_MODEL", &c.Transcription.Model},
		{"REJOICE_TRANSCRIPTION_LANGUAGE", &c.Transcription.Language},
	}
	for _, o := range overrides {
		if value := os.Getenv(o.env); value != "" {
			*o.target = value
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Transcription.MinWindow == 0 {
		c.Transcription.MinWindow = time.Second
	}
	if c.Transcription.StopTimeout == 0 {
		c.Transcription.StopTimeout = 5 * time.Second
	}
	if c.Transcription.Threads == 0 {
		threads := runtime.NumCPU() - 1
		if threads < 1 {
			threads = 1
		}
		c.Transcription.Threads = threads
	}
}

// Save writes the config back atomically so a crash mid-write cannot
// leave a truncated file behind.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := atomicfile.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func SaveDefaultConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configContent := `# Rejoice Configuration
# This file is generated with defaults on first run. Edit as needed;
# values are read once when a command starts.

# Output Configuration
[output]
  save_path = "~/Documents/transcripts"   # Where transcripts (and archived audio) are written

# Audio Capture Configuration
[audio]
  sample_rate = 16000            # Audio sample rate in Hz (16000 recommended for speech)
  channels = 1                   # Number of audio channels (1 = mono, 2 = stereo)
  buffer_size = 4096             # Capture read size in bytes
  device = ""                    # PipeWire audio device (empty = default microphone)
  keep_after_transcription = false   # Always keep the archived audio file
  auto_delete = false            # Always delete audio after successful transcription

# Speech Transcription Configuration
[transcription]
  provider = "whisper-cpp"       # "whisper-cpp" (local), "openai", or "groq"
  api_key = ""                   # API key for remote providers (or OPENAI_API_KEY / GROQ_API_KEY)
  model = ""                     # Model path or name (empty = provider default)
  language = "auto"              # "auto" or ISO-639-1 code ("en", "it", "es", ...)
  realtime = true                # Transcribe incrementally while recording
  min_window = "1s"              # Smallest audio window handed to the engine live
  stop_timeout = "5s"            # How long to wait for in-flight live windows on stop
  threads = 0                    # CPU threads for local transcription (0 = auto)

# Desktop Notification Configuration
[notifications]
  enabled = true                 # Enable notifications
  type = "desktop"               # "desktop", "log", or "none"

# Audio retention: when neither keep_after_transcription nor auto_delete
# is set, you are asked after each successful transcription.
`

	if err := atomicfile.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}
	return nil
}
