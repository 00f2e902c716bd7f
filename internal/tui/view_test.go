package tui

import (
	"strings"
	"testing"
	"time"
)

func TestLevelMeter(t *testing.T) {
	tests := []struct {
		name       string
		level      float64
		width      int
		wantFilled int
	}{
		{"silence", 0, 10, 0},
		{"half", 0.5, 10, 5},
		{"full", 1.0, 10, 10},
		{"clamped above", 3.5, 10, 10},
		{"clamped below", -1, 10, 0},
		{"default width", 1.0, 0, meterWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := LevelMeter(tt.level, tt.width)

			filled := strings.Count(bar, "█")
			if filled != tt.wantFilled {
				t.Errorf("filled cells = %d, want %d", filled, tt.wantFilled)
			}

			width := tt.width
			if width <= 0 {
				width = meterWidth
			}
			if total := filled + strings.Count(bar, "░"); total != width {
				t.Errorf("total cells = %d, want %d", total, width)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"zero", 0, "00:00"},
		{"seconds", 42 * time.Second, "00:42"},
		{"minutes", 3*time.Minute + 7*time.Second, "03:07"},
		{"subsecond rounds", 1500 * time.Millisecond, "00:02"},
		{"over an hour", time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatElapsed(tt.elapsed); got != tt.want {
				t.Errorf("FormatElapsed(%v) = %q, want %q", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestRecordingPanel(t *testing.T) {
	panel := RecordingPanel("000042", 90*time.Second, 0.5, true)

	for _, want := range []string{"Recording", "000042", "01:30", "transcribing live", "Enter to stop"} {
		if !strings.Contains(panel, want) {
			t.Errorf("panel should contain %q:\n%s", want, panel)
		}
	}

	t.Run("batch mode hides live hint", func(t *testing.T) {
		panel := RecordingPanel("000042", time.Second, 0, false)
		if strings.Contains(panel, "transcribing live") {
			t.Error("batch panel should not advertise live transcription")
		}
	})
}

func TestCompletePanel(t *testing.T) {
	panel := CompletePanel("000007", "/notes/000007_transcript_20260829.md", 2*time.Minute, 314)

	for _, want := range []string{"000007", "000007_transcript_20260829.md", "02:00", "314"} {
		if !strings.Contains(panel, want) {
			t.Errorf("panel should contain %q:\n%s", want, panel)
		}
	}
}

func TestCancelledNotice(t *testing.T) {
	if got := CancelledNotice("000003", true); !strings.Contains(got, "deleted") {
		t.Errorf("deleted notice should say so: %q", got)
	}
	if got := CancelledNotice("000003", false); !strings.Contains(got, "cancelled") {
		t.Errorf("kept notice should mention cancelled status: %q", got)
	}
}
