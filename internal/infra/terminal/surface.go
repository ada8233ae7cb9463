// Package terminal provides a text surface for the countdown, cues and
// ambient colour.
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/osa030/intervalbox/internal/app/playback"
	"github.com/osa030/intervalbox/internal/domain/interval"
)

// ColorMode controls ANSI colour output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

const (
	clearLine = "\r\x1b[2K"
	reset     = "\x1b[0m"
	bell      = "\a"
)

// palette maps ambient modes to ANSI background/foreground codes.
var palette = map[playback.Mode]string{
	playback.ModeNeutral:                 "",
	playback.ModeFor(interval.KindReady): "\x1b[30;43m", // black on yellow
	playback.ModeFor(interval.KindWork):  "\x1b[97;41m", // white on red
	playback.ModeFor(interval.KindRest):  "\x1b[30;42m", // black on green
	playback.ModeFor(interval.KindReset): "\x1b[97;44m", // white on blue
}

// Config represents surface configuration.
type Config struct {
	Color ColorMode
	Bell  bool
}

// Surface renders the countdown on a single, continuously rewritten line.
// It implements playback.Display, playback.Cue and playback.Ambient.
type Surface struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	bell   bool
	inline bool // rewrite the same line instead of printing one line per update

	mode   playback.Mode
	last   string
	status string
}

// NewStdout creates a surface on standard output.
func NewStdout(cfg Config) *Surface {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	var out io.Writer = os.Stdout
	if tty {
		out = colorable.NewColorable(os.Stdout)
	}
	return New(out, cfg, tty)
}

// New creates a surface writing to out. tty selects line rewriting and is
// used to resolve ColorAuto.
func New(out io.Writer, cfg Config, tty bool) *Surface {
	color := tty
	switch cfg.Color {
	case ColorAlways:
		color = true
	case ColorNever:
		color = false
	}

	return &Surface{
		out:    out,
		color:  color,
		bell:   cfg.Bell,
		inline: tty,
		mode:   playback.ModeNeutral,
	}
}

// Show renders "[MM:SS] status".
func (s *Surface) Show(timeText, statusText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = timeText
	s.status = statusText
	s.renderLocked()
}

// SetMode changes the ambient colour and redraws the current line.
func (s *Surface) SetMode(mode playback.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == mode {
		return
	}
	s.mode = mode
	if s.last != "" && s.inline {
		s.renderLocked()
	}
}

// PlayCountdown rings the terminal bell once.
func (s *Surface) PlayCountdown() {
	s.ring(1)
}

// PlayTransition rings the terminal bell twice.
func (s *Surface) PlayTransition() {
	s.ring(2)
}

// Printf prints a message on its own line without disturbing the countdown.
func (s *Surface) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inline && s.last != "" {
		_, _ = io.WriteString(s.out, clearLine)
	}
	_, _ = fmt.Fprintf(s.out, format, args...)
	if s.inline && s.last != "" {
		s.renderLocked()
	}
}

// Line returns the last rendered line without colour codes.
func (s *Surface) Line() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plainLocked()
}

// Mode returns the current ambient mode.
func (s *Surface) Mode() playback.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Surface) ring(n int) {
	if !s.bell {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		_, _ = io.WriteString(s.out, bell)
	}
}

func (s *Surface) plainLocked() string {
	return fmt.Sprintf("[%s] %s", s.last, s.status)
}

// renderLocked writes the current line. Write errors are ignored; a broken
// terminal must not stop the workout. Must be called with lock held.
func (s *Surface) renderLocked() {
	line := s.plainLocked()
	if s.color {
		if code := palette[s.mode]; code != "" {
			line = code + " " + line + " " + reset
		}
	}

	if s.inline {
		_, _ = io.WriteString(s.out, clearLine+line)
		return
	}
	_, _ = io.WriteString(s.out, line+"\n")
}
