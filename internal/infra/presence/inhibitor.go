// Package presence keeps the display awake by holding an OS inhibitor
// process for as long as a workout runs.
package presence

import (
	"context"
	"os/exec"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// ErrNoCommand is returned when no inhibitor command is configured.
var ErrNoCommand = errors.New("no presence command configured")

// Inhibitor runs one inhibitor process per acquired handle.
type Inhibitor struct {
	mu      sync.Mutex
	command []string
	held    map[string]*exec.Cmd
}

// NewInhibitor creates an inhibitor running the given command
// (e.g. ["caffeinate", "-d"]).
func NewInhibitor(command []string) *Inhibitor {
	return &Inhibitor{
		command: append([]string(nil), command...),
		held:    make(map[string]*exec.Cmd),
	}
}

// Acquire starts the inhibitor process and returns its handle.
func (i *Inhibitor) Acquire(ctx context.Context) (string, error) {
	if len(i.command) == 0 {
		return "", ErrNoCommand
	}
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "presence acquire cancelled")
	}

	cmd := exec.Command(i.command[0], i.command[1:]...)
	if err := cmd.Start(); err != nil {
		return "", errors.Wrapf(err, "failed to start %s", i.command[0])
	}

	handle := uuid.New().String()

	i.mu.Lock()
	i.held[handle] = cmd
	i.mu.Unlock()

	go i.wait(handle, cmd)

	zlog.Debug().Msgf("presence: inhibitor started: handle=%s pid=%d", handle, cmd.Process.Pid)
	return handle, nil
}

// Release stops the inhibitor process of the handle. Unknown handles are ignored.
func (i *Inhibitor) Release(handle string) {
	i.mu.Lock()
	cmd, ok := i.held[handle]
	delete(i.held, handle)
	i.mu.Unlock()

	if !ok {
		return
	}
	if err := cmd.Process.Kill(); err != nil {
		zlog.Debug().Msgf("presence: failed to stop inhibitor: handle=%s err=%v", handle, err)
	}
}

// active returns the number of running inhibitor processes.
func (i *Inhibitor) active() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.held)
}

// wait reaps the process. An inhibitor that exits on its own is logged and
// forgotten; the workout keeps running without it.
func (i *Inhibitor) wait(handle string, cmd *exec.Cmd) {
	err := cmd.Wait()

	i.mu.Lock()
	_, stillHeld := i.held[handle]
	delete(i.held, handle)
	i.mu.Unlock()

	if stillHeld {
		zlog.Warn().Msgf("presence: inhibitor exited early: handle=%s err=%v", handle, err)
	}
}

// Noop is a presence hint that does nothing.
type Noop struct{}

// Acquire returns an empty handle.
func (Noop) Acquire(context.Context) (string, error) {
	return "", nil
}

// Release does nothing.
func (Noop) Release(string) {}
