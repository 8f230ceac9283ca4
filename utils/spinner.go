package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	hideCursorSeq = "\033[?25l"
	showCursorSeq = "\033[?25h"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner displays an animated status line while an image is being filtered.
type Spinner struct {
	Writer  io.Writer
	Success string // printed by Finish when the operation succeeded
	Failure string // printed by Finish when the operation failed

	status     string
	delay      time.Duration
	hideCursor bool

	mu      sync.Mutex
	lastLen int
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner returns a spinner showing status behind the banner, refreshed every d.
func NewSpinner(status string, d time.Duration, hideCursor bool) *Spinner {
	if d <= 0 {
		d = 100 * time.Millisecond
	}
	return &Spinner{
		Writer:     os.Stderr,
		Success:    StatusLine("⇢ the filter has been applied successfully ✔", SuccessMessage),
		Failure:    StatusLine("⇢ applying the filter failed ✘", ErrorMessage),
		status:     StatusLine(status, DefaultMessage),
		delay:      d,
		hideCursor: hideCursor && runtime.GOOS != "windows",
	}
}

// Start starts the animation. Calling Start on a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return
	}
	if s.hideCursor {
		fmt.Fprint(s.Writer, hideCursorSeq)
	}
	s.stop, s.done = make(chan struct{}), make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		frame := DecorateText(string(spinnerFrames[i%len(spinnerFrames)]), SuccessMessage)

		s.mu.Lock()
		s.print(s.status + " " + frame)
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Finish stops the animation and replaces the status line with
// the success or the failure message, depending on err.
func (s *Spinner) Finish(err error) {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	s.RestoreCursor()

	msg := s.Success
	if err != nil {
		msg = s.Failure
	}
	if msg != "" {
		fmt.Fprintln(s.Writer, msg)
	}
}

// RestoreCursor makes the cursor visible again.
func (s *Spinner) RestoreCursor() {
	if s.hideCursor {
		fmt.Fprint(s.Writer, showCursorSeq)
	}
}

// print overwrites the current line. Caller must hold the lock.
func (s *Spinner) print(line string) {
	n := utf8.RuneCountInString(line)
	pad := ""
	if n < s.lastLen {
		pad = strings.Repeat(" ", s.lastLen-n)
	}
	fmt.Fprint(s.Writer, "\r"+line+pad)
	s.lastLen = n
}

// clear blanks the current line. Caller must hold the lock.
func (s *Spinner) clear() {
	fmt.Fprint(s.Writer, "\r"+strings.Repeat(" ", s.lastLen)+"\r")
	s.lastLen = 0
}
