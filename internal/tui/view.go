// Package tui renders the recording session's terminal surface. The
// render functions are pure string builders so they can be tested
// without a terminal; LiveDisplay handles the in-place repaint.
package tui

import (
	"fmt"
	"strings"
	"time"
)

const meterWidth = 20

// LevelMeter renders an input level as a fixed-width bar. The level is
// clamped to [0, 1].
func LevelMeter(level float64, width int) string {
	if width <= 0 {
		width = meterWidth
	}
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(level * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return StyleHighlight.Render(bar)
}

// FormatElapsed renders a duration as mm:ss, rolling into h:mm:ss for
// recordings longer than an hour.
func FormatElapsed(elapsed time.Duration) string {
	elapsed = elapsed.Round(time.Second)
	h := int(elapsed.Hours())
	m := int(elapsed.Minutes()) % 60
	s := int(elapsed.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// RecordingPanel is the live view repainted while capture is active.
func RecordingPanel(id string, elapsed time.Duration, level float64, realtime bool) string {
	var b strings.Builder

	b.WriteString(StyleRecording.Render("● Recording") + StyleMuted.Render(" #"+id))
	b.WriteString("\n")
	b.WriteString(StyleHeader.Render(FormatElapsed(elapsed)) + "  " + LevelMeter(level, meterWidth))
	b.WriteString("\n")

	if realtime {
		b.WriteString(StyleMuted.Render("transcribing live") + "\n")
	}
	b.WriteString(StyleSubtle.Render("Enter to stop · Ctrl-C to cancel"))

	return StyleRecordingBox.Render(b.String())
}

// CompletePanel summarizes a finished session.
func CompletePanel(id, transcriptPath string, duration time.Duration, words int) string {
	var b strings.Builder

	b.WriteString(StyleSuccess.Render("✓ Transcript saved") + StyleMuted.Render(" #"+id))
	b.WriteString("\n")
	b.WriteString(StyleMuted.Render("file      ") + transcriptPath + "\n")
	b.WriteString(StyleMuted.Render("duration  ") + FormatElapsed(duration) + "\n")
	b.WriteString(StyleMuted.Render("words     ") + fmt.Sprintf("%d", words))

	return StyleBox.Render(b.String())
}

// CancelledNotice is printed when a session ends without a transcript
// the user wants to keep.
func CancelledNotice(id string, deleted bool) string {
	if deleted {
		return StyleWarning.Render(fmt.Sprintf("Recording #%s cancelled, transcript deleted", id))
	}
	return StyleWarning.Render(fmt.Sprintf("Recording #%s cancelled, transcript kept with status: cancelled", id))
}

// ErrorNotice formats a fatal session error for the terminal.
func ErrorNotice(msg string) string {
	return StyleError.Render("✗ " + msg)
}
