// Package spinner shows activity on the terminal while a remote call is in
// flight. Nothing is drawn when the writer is not a terminal.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	hideCursor     = "\033[?25l"
	showCursor     = "\033[?25h"
	carriageReturn = "\r"
)

// CharSet is the sequence of animation frames.
type CharSet []string

// Braille is the default frame set.
var Braille = CharSet{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Config holds spinner options.
type Config struct {
	CharSet CharSet
	Message string

	// RefreshRate is the time between frames. Defaults to 80ms.
	RefreshRate time.Duration

	// Delay postpones the first frame so fast calls draw nothing.
	Delay time.Duration

	// Writer defaults to os.Stderr.
	Writer io.Writer

	HideCursor bool

	// IsTTY overrides terminal detection on Writer.
	IsTTY *bool
}

// DefaultConfig returns the configuration used by the shell.
func DefaultConfig() Config {
	return Config{
		CharSet:     Braille,
		Message:     "Waiting for server",
		RefreshRate: 80 * time.Millisecond,
		Delay:       250 * time.Millisecond,
		Writer:      os.Stderr,
		HideCursor:  true,
	}
}

// Spinner draws an animated line until stopped.
type Spinner struct {
	mu sync.Mutex

	config    Config
	isTTY     bool
	active    bool
	startTime time.Time
	frame     int
	drawn     int
	hidden    bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWithConfig creates a spinner, filling unset fields with defaults.
func NewWithConfig(config Config) *Spinner {
	if len(config.CharSet) == 0 {
		config.CharSet = Braille
	}
	if config.RefreshRate <= 0 {
		config.RefreshRate = 80 * time.Millisecond
	}
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	isTTY := isTerminalWriter(config.Writer)
	if config.IsTTY != nil {
		isTTY = *config.IsTTY
	}
	return &Spinner{config: config, isTTY: isTTY}
}

func isTerminalWriter(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Start begins the animation. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.startTime = time.Now()
	s.frame = 0
	if !s.isTTY {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.spin(s.stopCh, s.doneCh)
}

// Stop halts the animation and erases the line. It blocks until the
// animation goroutine has exited and is safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	if !s.isTTY {
		s.mu.Unlock()
		return
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	if s.hidden {
		fmt.Fprint(s.config.Writer, showCursor)
		s.hidden = false
	}
}

func (s *Spinner) spin(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	if s.config.Delay > 0 {
		select {
		case <-stopCh:
			return
		case <-time.After(s.config.Delay):
		}
	}

	s.mu.Lock()
	if s.config.HideCursor {
		fmt.Fprint(s.config.Writer, hideCursor)
		s.hidden = true
	}
	s.mu.Unlock()
	s.render()

	ticker := time.NewTicker(s.config.RefreshRate)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	char := s.config.CharSet[s.frame%len(s.config.CharSet)]
	s.frame++
	line := fmt.Sprintf("%s %s %s", char, s.config.Message, formatElapsed(time.Since(s.startTime)))
	s.clear()
	fmt.Fprint(s.config.Writer, line)
	s.drawn = len(line)
}

// clear overwrites the last drawn line. Caller holds the mutex.
func (s *Spinner) clear() {
	if s.drawn == 0 {
		return
	}
	fmt.Fprint(s.config.Writer, carriageReturn+strings.Repeat(" ", s.drawn)+carriageReturn)
	s.drawn = 0
}

func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%.1fs)", d.Seconds())
	}
	return fmt.Sprintf("(%dm %ds)", int(d.Minutes()), int(d.Seconds())%60)
}

// Run shows a spinner while fn executes and returns fn's error.
func Run(config Config, fn func() error) error {
	s := NewWithConfig(config)
	s.Start()
	defer s.Stop()
	return fn()
}
