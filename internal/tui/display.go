package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// LiveDisplay repaints a multi-line frame in place. It tracks how many
// lines the previous frame occupied and clears exactly those before
// drawing the next one, so the panel appears to update rather than
// scroll.
type LiveDisplay struct {
	mu     sync.Mutex
	out    *termenv.Output
	lines  int
	closed bool
}

func NewLiveDisplay(w io.Writer) *LiveDisplay {
	out := termenv.NewOutput(w)
	out.HideCursor()
	return &LiveDisplay{out: out}
}

// Render replaces the previous frame with the given one.
func (d *LiveDisplay) Render(frame string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if d.lines > 0 {
		d.out.CursorUp(d.lines)
	}
	for _, line := range strings.Split(frame, "\n") {
		d.out.ClearLine()
		fmt.Fprintln(d.out, line)
	}
	d.lines = strings.Count(frame, "\n") + 1
}

// Close restores the cursor and leaves the last frame on screen.
// Render calls after Close are ignored.
func (d *LiveDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.out.ShowCursor()
}
