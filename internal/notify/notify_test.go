package notify

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		kind    string
		want    string
	}{
		{"desktop", true, "desktop", "notify.Desktop"},
		{"log", true, "log", "notify.Log"},
		{"none", true, "none", "notify.Nop"},
		{"unknown falls back to nop", true, "smoke-signal", "notify.Nop"},
		{"disabled overrides type", false, "desktop", "notify.Nop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := New(tt.enabled, tt.kind)

			var got string
			switch notifier.(type) {
			case Desktop:
				got = "notify.Desktop"
			case Log:
				got = "notify.Log"
			case Nop:
				got = "notify.Nop"
			}
			if got != tt.want {
				t.Errorf("New(%v, %q) = %s, want %s", tt.enabled, tt.kind, got, tt.want)
			}
		})
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logNotifier := Log{}

	t.Run("RecordingStarted", func(t *testing.T) {
		buf.Reset()
		logNotifier.RecordingStarted("000042")

		if output := buf.String(); !strings.Contains(output, "000042") {
			t.Errorf("log output should mention the recording id, got: %s", output)
		}
	})

	t.Run("RecordingFinished", func(t *testing.T) {
		buf.Reset()
		logNotifier.RecordingFinished("000042", "/tmp/000042_transcript_20260829.md")

		output := buf.String()
		if !strings.Contains(output, "000042") || !strings.Contains(output, "transcript") {
			t.Errorf("log output should mention id and path, got: %s", output)
		}
	})

	t.Run("Error", func(t *testing.T) {
		buf.Reset()
		logNotifier.Error("microphone unplugged")

		if output := buf.String(); !strings.Contains(output, "microphone unplugged") {
			t.Errorf("log output should contain the error message, got: %s", output)
		}
	})
}

func TestNopNotifierDoesNothing(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	nop := Nop{}
	nop.RecordingStarted("000001")
	nop.RecordingFinished("000001", "/tmp/x.md")
	nop.Error("ignored")

	if buf.Len() != 0 {
		t.Errorf("Nop should not log, got: %s", buf.String())
	}
}
