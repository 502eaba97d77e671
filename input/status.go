package input

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"pipelined.dev/hush"
)

// clearLine returns the carriage and erases the line.
const clearLine = "\r\x1b[K"

// Status is a single repainted terminal line with the session state.
type Status struct {
	mu       sync.Mutex
	w        io.Writer
	name     *color.Color
	phase    *color.Color
	loudness *color.Color
}

// NewStatus returns a status line written to w.
func NewStatus(w io.Writer) *Status {
	return &Status{
		w:        w,
		name:     color.New(color.Bold),
		phase:    color.New(color.FgCyan),
		loudness: color.New(color.FgYellow),
	}
}

// Show repaints the line.
func (s *Status) Show(p hush.Phase, loudness float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s%s %s loudness %s",
		clearLine,
		s.name.Sprint("hush"),
		s.phase.Sprint(p),
		s.loudness.Sprintf("%.4g", loudness),
	)
}

// Clear erases the line.
func (s *Status) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, clearLine)
}
