package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerStyle  = lipgloss.NewStyle().Foreground(colorCyan)
)

const spinnerInterval = 80 * time.Millisecond

// spinner animates a message on w until stopped or until its context ends.
type spinner struct {
	w       io.Writer
	message string

	once    sync.Once
	quit    chan struct{}
	stopped chan struct{}
	frames  int // frames drawn, guarded by stopped
}

// startSpinner begins drawing immediately and returns the running spinner.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	s := &spinner{
		w:       w,
		message: message,
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop(ctx)
	return s
}

func (s *spinner) loop(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		s.draw()
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.quit:
			s.clear()
			return
		case <-ticker.C:
		}
	}
}

func (s *spinner) draw() {
	frame := spinnerFrames[s.frames%len(spinnerFrames)]
	fmt.Fprintf(s.w, "\r%s %s", spinnerStyle.Render(frame), StyleDim.Render(s.message))
	s.frames++
}

func (s *spinner) clear() {
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// stop halts the animation and waits until the line is cleared. It is safe
// to call more than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.stopped
}

// withSpinner runs fn while a spinner shows message on w.
func withSpinner(ctx context.Context, w io.Writer, message string, fn func() error) error {
	s := startSpinner(ctx, w, message)
	err := fn()
	s.stop()
	return err
}
