// Package command provides the line-oriented command loop that turns user
// input into playback actions.
package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/intervalbox/internal/app/playback"
	"github.com/osa030/intervalbox/internal/app/settings"
	"github.com/osa030/intervalbox/internal/domain/interval"
)

// Errors
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownPreset  = errors.New("unknown preset")
	ErrUsage          = errors.New("invalid usage")
)

// Controller is the part of the playback controller the loop drives.
type Controller interface {
	Start()
	Pause()
	Resume()
	Reset()
	OnSettingsChanged() int
	IsRunning() bool
	Snapshot() playback.Status
}

// Printer prints user-facing messages.
type Printer interface {
	Printf(format string, args ...any)
}

// Loop executes commands one at a time.
type Loop struct {
	ctrl    Controller
	store   *settings.Store
	presets map[string]map[string]any
	out     Printer
}

// NewLoop creates a command loop.
func NewLoop(ctrl Controller, store *settings.Store, presets map[string]map[string]any, out Printer) *Loop {
	return &Loop{
		ctrl:    ctrl,
		store:   store,
		presets: presets,
		out:     out,
	}
}

// Run reads commands from r until EOF, "quit", or ctx is done.
func (l *Loop) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return errors.Wrap(err, "failed to read input")
			}
			return nil
		case line := <-lines:
			quit, err := l.Execute(line)
			if err != nil {
				l.out.Printf("%v (type \"help\" for commands)\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// Execute runs a single command line. It reports whether the loop should stop.
func (l *Loop) Execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		l.toggle()
		return false, nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	zlog.Debug().Msgf("command: name=%s args=%v", name, args)

	switch name {
	case "start", "s":
		l.ctrl.Start()
	case "pause", "p":
		l.ctrl.Pause()
	case "resume":
		l.ctrl.Resume()
	case "toggle", "t":
		l.toggle()
	case "reset", "r":
		l.ctrl.Reset()
	case "set":
		return false, l.set(args)
	case "preset":
		return false, l.preset(args)
	case "status":
		l.status()
	case "help", "h", "?":
		l.help()
	case "quit", "q", "exit":
		return true, nil
	default:
		return false, errors.Wrapf(ErrUnknownCommand, "%q", name)
	}
	return false, nil
}

// toggle mirrors a single play/pause button: pause while running, resume when
// paused and start otherwise.
func (l *Loop) toggle() {
	switch {
	case l.ctrl.IsRunning():
		l.ctrl.Pause()
	case l.ctrl.Snapshot().State == playback.StatePaused:
		l.ctrl.Resume()
	default:
		l.ctrl.Start()
	}
}

func (l *Loop) set(args []string) error {
	if len(args) != 2 {
		return errors.Wrap(ErrUsage, "set <field> <value>")
	}
	if err := l.store.Set(args[0], args[1]); err != nil {
		return errors.Wrapf(err, "fields: %s", strings.Join(settings.Fields(), ", "))
	}
	l.settingsChanged()
	return nil
}

func (l *Loop) preset(args []string) error {
	if len(args) != 1 {
		return errors.Wrapf(ErrUsage, "preset <name> (available: %s)", strings.Join(l.presetNames(), ", "))
	}
	values, ok := l.presets[args[0]]
	if !ok {
		return errors.Wrapf(ErrUnknownPreset, "%q (available: %s)", args[0], strings.Join(l.presetNames(), ", "))
	}
	if err := l.store.Apply(values); err != nil {
		return errors.Wrapf(err, "preset %s", args[0])
	}
	l.settingsChanged()
	return nil
}

func (l *Loop) settingsChanged() {
	// The controller redraws the total only when idle or finished; the
	// summary below is printed in every state.
	total := l.ctrl.OnSettingsChanged()
	s := l.store.ReadSettings()
	l.out.Printf("work=%ds rest=%ds exercises=%d rounds=%d round_reset=%ds total=%s\n",
		s.Work, s.Rest, s.Exercises, s.Rounds, s.RoundReset, interval.FormatClock(total))
}

func (l *Loop) status() {
	st := l.ctrl.Snapshot()
	if st.Phase == nil {
		l.out.Printf("state=%s\n", st.State)
		return
	}
	l.out.Printf("state=%s phase=%d/%d %s remaining=%s\n",
		st.State, st.Position+1, st.Phases, st.Phase.Name, interval.FormatClock(st.Remaining))
}

func (l *Loop) help() {
	l.out.Printf(`commands:
  <enter>, toggle      start / pause / resume
  start, s             start from the first phase
  pause, p             pause
  resume               continue a paused workout
  reset, r             stop and show the total time
  set <field> <value>  fields: %s
  preset <name>        load a preset (%s)
  status               show the current phase
  quit, q              exit
`, strings.Join(settings.Fields(), ", "), strings.Join(l.presetNames(), ", "))
}

func (l *Loop) presetNames() []string {
	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriterPrinter adapts an io.Writer to Printer.
type WriterPrinter struct {
	W io.Writer
}

// Printf implements Printer.
func (p WriterPrinter) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.W, format, args...)
}
