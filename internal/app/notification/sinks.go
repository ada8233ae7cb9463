package notification

import (
	"os"
	"os/exec"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/intervalbox/internal/app/playback"
)

// LogSink logs every event.
func LogSink() Sink {
	return SinkFunc(func(e playback.Event) error {
		switch e.Type {
		case playback.EventPhaseStarted:
			if e.Phase != nil {
				zlog.Info().Msgf("phase %d/%d: %s (%ds)", e.Position+1, e.Total, e.Phase.Name, e.Phase.Duration)
			}
		case playback.EventWorkoutFinished:
			zlog.Info().Msgf("workout finished: run_id=%s phases=%d", e.RunID, e.Total)
		case playback.EventCountdown:
			zlog.Debug().Msgf("countdown: remaining=%d", e.Remaining)
		default:
			zlog.Debug().Msgf("state changed: state=%s run_id=%s", e.State, e.RunID)
		}
		return nil
	})
}

// HookRunner runs a shell command with extra environment variables.
type HookRunner func(command string, env []string) error

// ShellRunner runs a command with sh -c, inheriting stdout and stderr.
func ShellRunner(command string, env []string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), env...)
	return cmd.Run()
}

// HookSink runs shell hooks when a workout starts and when it finishes.
// Hooks run in the background and never delay playback.
type HookSink struct {
	OnStarted  []string
	OnFinished []string
	Runner     HookRunner
}

// Notify implements Sink.
func (h *HookSink) Notify(e playback.Event) error {
	var hooks []string
	var stage string
	switch {
	case e.Type == playback.EventPhaseStarted && e.Position == 0:
		hooks, stage = h.OnStarted, "on_started"
	case e.Type == playback.EventWorkoutFinished:
		hooks, stage = h.OnFinished, "on_finished"
	default:
		return nil
	}
	if len(hooks) == 0 {
		return nil
	}

	runner := h.Runner
	if runner == nil {
		runner = ShellRunner
	}
	env := []string{"INTERVAL_RUN_ID=" + e.RunID, "INTERVAL_STAGE=" + stage}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))
	go func() {
		for _, hook := range hooks {
			zlog.Info().Msgf("Executing hook: %s", hook)
			if err := runner(hook, env); err != nil {
				zlog.Error().Err(errors.Wrapf(err, "hook %s", stage)).Msgf("Failed to execute hook: %s", hook)
			}
		}
	}()
	return nil
}
