package recording

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.SampleRate != 16000 {
		t.Errorf("default sample rate should be 16000, got %d", config.SampleRate)
	}
	if config.Channels != 1 {
		t.Errorf("default channels should be 1, got %d", config.Channels)
	}
	if config.Format != "s16" {
		t.Errorf("default format should be s16, got %s", config.Format)
	}
	if config.Device != "" {
		t.Errorf("default device should be empty, got %s", config.Device)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{"valid default", DefaultConfig(), false},
		{"zero sample rate", Config{SampleRate: 0, Channels: 1, Format: "s16", BufferSize: 4096}, true},
		{"negative sample rate", Config{SampleRate: -1, Channels: 1, Format: "s16", BufferSize: 4096}, true},
		{"zero channels", Config{SampleRate: 16000, Channels: 0, Format: "s16", BufferSize: 4096}, true},
		{"zero buffer", Config{SampleRate: 16000, Channels: 1, Format: "s16", BufferSize: 0}, true},
		{"empty format", Config{SampleRate: 16000, Channels: 1, Format: "", BufferSize: 4096}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.expectError && err == nil {
				t.Errorf("expected error for config %+v", tt.config)
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestOpenRequiresCallback(t *testing.T) {
	_, err := Open(context.Background(), DefaultConfig(), nil)
	if err == nil {
		t.Error("Open should fail without a frame callback")
	}
}

func TestSessionBuildArgs(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected []string
	}{
		{
			name:     "default config",
			config:   DefaultConfig(),
			expected: []string{"--format", "s16", "--rate", "16000", "--channels", "1", "-"},
		},
		{
			name:     "with device",
			config:   Config{SampleRate: 48000, Channels: 2, Format: "f32", BufferSize: 4096, Device: "alsa_input.usb-mic"},
			expected: []string{"--format", "f32", "--rate", "48000", "--channels", "2", "-", "--target", "alsa_input.usb-mic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{config: tt.config}
			args := s.buildArgs()
			if len(args) != len(tt.expected) {
				t.Fatalf("args = %v, expected %v", args, tt.expected)
			}
			for i := range args {
				if args[i] != tt.expected[i] {
					t.Errorf("arg[%d] = %q, expected %q", i, args[i], tt.expected[i])
				}
			}
		})
	}
}

func TestWAVWriter(t *testing.T) {
	t.Run("header and sizes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audio.wav")
		w, err := NewWAVWriter(path, 16000, 1)
		if err != nil {
			t.Fatalf("NewWAVWriter failed: %v", err)
		}

		pcm := make([]byte, 32000) // one second at 16kHz mono s16
		if _, err := w.Write(pcm); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back failed: %v", err)
		}
		if len(raw) != 44+len(pcm) {
			t.Fatalf("file size = %d, expected %d", len(raw), 44+len(pcm))
		}
		if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
			t.Error("missing RIFF/WAVE magic")
		}
		if got := binary.LittleEndian.Uint32(raw[4:8]); got != uint32(36+len(pcm)) {
			t.Errorf("RIFF size = %d", got)
		}
		if got := binary.LittleEndian.Uint32(raw[24:28]); got != 16000 {
			t.Errorf("sample rate = %d", got)
		}
		if got := binary.LittleEndian.Uint32(raw[40:44]); got != uint32(len(pcm)) {
			t.Errorf("data size = %d", got)
		}
	})

	t.Run("duration from bytes written", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audio.wav")
		w, err := NewWAVWriter(path, 16000, 1)
		if err != nil {
			t.Fatalf("NewWAVWriter failed: %v", err)
		}
		defer w.Close()

		w.Write(make([]byte, 64000)) // two seconds
		if got := w.Duration(); math.Abs(got-2.0) > 1e-9 {
			t.Errorf("Duration = %v, expected 2.0", got)
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audio.wav")
		w, err := NewWAVWriter(path, 16000, 1)
		if err != nil {
			t.Fatalf("NewWAVWriter failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("first Close failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Errorf("second Close failed: %v", err)
		}
	})

	t.Run("write after close fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audio.wav")
		w, err := NewWAVWriter(path, 16000, 1)
		if err != nil {
			t.Fatalf("NewWAVWriter failed: %v", err)
		}
		w.Close()
		if _, err := w.Write([]byte{0, 0}); err == nil {
			t.Error("expected error writing to closed sink")
		}
	})
}

func TestEncodeWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	out := EncodeWAV(pcm, 16000, 1)

	if len(out) != 44+len(pcm) {
		t.Fatalf("length = %d", len(out))
	}
	if string(out[0:4]) != "RIFF" {
		t.Error("missing RIFF magic")
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d", got)
	}
	if string(out[44:]) != string(pcm) {
		t.Error("payload mismatch")
	}
}

func TestLevel(t *testing.T) {
	t.Run("silence is zero", func(t *testing.T) {
		if got := Level(make([]byte, 1024)); got != 0 {
			t.Errorf("Level(silence) = %v", got)
		}
	})

	t.Run("empty frame is zero", func(t *testing.T) {
		if got := Level(nil); got != 0 {
			t.Errorf("Level(nil) = %v", got)
		}
	})

	t.Run("full-scale clamps to one", func(t *testing.T) {
		frame := make([]byte, 1024)
		for i := 0; i+1 < len(frame); i += 2 {
			binary.LittleEndian.PutUint16(frame[i:], uint16(32767))
		}
		if got := Level(frame); got != 1.0 {
			t.Errorf("Level(full scale) = %v, expected 1.0", got)
		}
	})

	t.Run("quiet speech registers", func(t *testing.T) {
		frame := make([]byte, 1024)
		for i := 0; i+1 < len(frame); i += 2 {
			binary.LittleEndian.PutUint16(frame[i:], uint16(int16(500)))
		}
		got := Level(frame)
		if got <= 0 || got > 1 {
			t.Errorf("Level(quiet) = %v, expected within (0, 1]", got)
		}
	})
}

func TestMeter(t *testing.T) {
	var m Meter

	if m.Value() != 0 {
		t.Errorf("initial value = %v", m.Value())
	}

	frame := make([]byte, 512)
	for i := 0; i+1 < len(frame); i += 2 {
		binary.LittleEndian.PutUint16(frame[i:], uint16(int16(8000)))
	}
	m.Update(frame)

	if got := m.Value(); got <= 0 {
		t.Errorf("value after update = %v", got)
	}

	// Concurrent reads while writing must not race.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			m.Update(frame)
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		_ = m.Value()
	}
	<-done
}
