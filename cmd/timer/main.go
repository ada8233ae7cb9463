// Package main provides the interval timer entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/intervalbox/internal/app/command"
	"github.com/osa030/intervalbox/internal/app/notification"
	"github.com/osa030/intervalbox/internal/app/playback"
	"github.com/osa030/intervalbox/internal/app/settings"
	"github.com/osa030/intervalbox/internal/domain/interval"
	"github.com/osa030/intervalbox/internal/infra/config"
	"github.com/osa030/intervalbox/internal/infra/logger"
	"github.com/osa030/intervalbox/internal/infra/presence"
	"github.com/osa030/intervalbox/internal/infra/terminal"
)

var (
	app        = kingpin.New("intervalbox", "Interval workout timer")
	configPath = app.Flag("config", "Path to config file").Default("config/timer.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()
	presetName = app.Flag("preset", "Preset to load before applying overrides").String()

	// Overrides are read as text so that they follow the same rules as
	// interactive "set" commands.
	overrides = map[string]*string{
		settings.FieldWork:       app.Flag("work", "Work duration in seconds").String(),
		settings.FieldRest:       app.Flag("rest", "Rest duration in seconds").String(),
		settings.FieldExercises:  app.Flag("exercises", "Exercises per round").String(),
		settings.FieldRounds:     app.Flag("rounds", "Number of rounds").String(),
		settings.FieldRoundReset: app.Flag("round-reset", "Pause between rounds in seconds").String(),
	}

	runCmd       = app.Command("run", "Run the timer interactively (default)").Default()
	autostart    = runCmd.Flag("autostart", "Start the workout immediately").Bool()
	exitOnFinish = runCmd.Flag("exit-on-finish", "Exit when the workout is complete").Bool()

	previewCmd = app.Command("preview", "Print the phase sequence and total time")
	presetsCmd = app.Command("presets", "List configured presets and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "warn",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		loggerConfig.NoColor = true
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	cfg, found, err := config.LoadOrDefault(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}
	if found {
		zlog.Info().Msgf("Loaded config from %s", *configPath)
	} else {
		zlog.Info().Msgf("Config %s not found, using defaults", *configPath)
	}

	store, err := newStore(cfg)
	if err != nil {
		zlog.Fatal().Msgf("Invalid settings: %v", err)
	}

	switch cmd {
	case presetsCmd.FullCommand():
		printPresets(cfg)
	case previewCmd.FullCommand():
		printPreview(cfg, store.ReadSettings())
	default:
		if err := run(cfg, store); err != nil {
			zlog.Error().Msgf("Timer error: %v", err)
			os.Exit(1)
		}
	}
}

// newStore creates the settings store from the config, then applies the
// preset and the command-line overrides in that order.
func newStore(cfg *config.Config) (*settings.Store, error) {
	store := settings.NewStore(cfg.Settings())

	name := cfg.Workout.Preset
	if *presetName != "" {
		name = *presetName
	}
	if name != "" {
		values, ok := cfg.Preset(name)
		if !ok {
			return nil, errors.Newf("preset %q is not defined (available: %s)", name, strings.Join(cfg.PresetNames(), ", "))
		}
		if err := store.Apply(values); err != nil {
			return nil, errors.Wrapf(err, "preset %s", name)
		}
		zlog.Info().Msgf("Loaded preset %s", name)
	}

	for _, field := range settings.Fields() {
		if v := overrides[field]; v != nil && *v != "" {
			if err := store.Set(field, *v); err != nil {
				return nil, err
			}
		}
	}

	store.OnChange(func(s interval.Settings) {
		zlog.Debug().Msgf("settings changed: %+v", s)
	})
	return store, nil
}

// run executes the interactive timer. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config, store *settings.Store) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surface := terminal.NewStdout(terminal.Config{
		Color: terminal.ColorMode(cfg.Display.Color),
		Bell:  cfg.IsBellEnabled(),
	})

	var hint playback.PresenceHint = presence.Noop{}
	if cfg.IsPresenceEnabled() {
		hint = presence.NewInhibitor(cfg.Presence.Command)
	} else {
		zlog.Info().Msg("Presence hint disabled")
	}

	ctrl := playback.NewController(store, playback.Surfaces{
		Display:  surface,
		Cue:      surface,
		Ambient:  surface,
		Presence: hint,
	}, playback.Config{
		TickInterval:  cfg.TickInterval(),
		Labels:        cfg.PhaseLabels(),
		IdleLabel:     cfg.Labels.Idle,
		CompleteLabel: cfg.Labels.Complete,
	})
	defer ctrl.Close()

	// Fan out playback events
	notifications := notification.NewManager()
	defer notifications.Close()
	notifications.Subscribe(notification.LogSink())
	notifications.Subscribe(&notification.HookSink{
		OnStarted:  cfg.Hooks.OnStarted,
		OnFinished: cfg.Hooks.OnFinished,
	})

	finished := make(chan struct{}, 1)
	if *exitOnFinish {
		var finishID string
		finishID = notifications.Subscribe(notification.SinkFunc(func(e playback.Event) error {
			if e.Type == playback.EventWorkoutFinished {
				notifications.Unsubscribe(finishID)
				select {
				case finished <- struct{}{}:
				default:
				}
			}
			return nil
		}))
	}
	go notifications.Run(ctx, ctrl.Events())

	ctrl.Reset()
	if *autostart {
		ctrl.Start()
	}

	loop := command.NewLoop(ctrl, store, cfg.Presets, surface)
	loopErrCh := make(chan error, 1)
	go func() {
		loopErrCh <- loop.Run(ctx, os.Stdin)
	}()

	// Wait for shutdown signal, quit command, or the end of the workout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-loopErrCh:
		runErr = err
	case <-finished:
		zlog.Info().Msg("Workout complete, exiting...")
	}

	ctrl.Reset()
	surface.Printf("\n")
	zlog.Debug().Msgf("Delivered %d playback events", notifications.SequenceNo())
	return runErr
}

// printPresets prints configured presets.
func printPresets(cfg *config.Config) {
	names := cfg.PresetNames()
	if len(names) == 0 {
		fmt.Println("No presets configured.")
		return
	}

	fmt.Println("Available Presets:")
	for _, name := range names {
		values, _ := cfg.Preset(name)
		s, err := settings.Decode(interval.Settings{}, values)
		if err != nil {
			fmt.Printf("  %-20s - invalid: %v\n", name, err)
			continue
		}
		total := interval.Total(s)
		fmt.Printf("  %-20s - work=%ds rest=%ds exercises=%d rounds=%d round_reset=%ds [total: %s]\n",
			name, s.Work, s.Rest, s.Exercises, s.Rounds, s.RoundReset, interval.FormatClock(total))
	}
}

// printPreview prints the phase sequence for the given settings.
func printPreview(cfg *config.Config, s interval.Settings) {
	seq := interval.NewBuilder(cfg.PhaseLabels()).Build(s)

	elapsed := 0
	for i, p := range seq {
		fmt.Printf("%3d  %s  %-12s %s\n", i+1, interval.FormatClock(elapsed), p.Name, interval.FormatClock(p.Duration))
		elapsed += p.Duration
	}

	if n := interval.PhaseCount(s); n > seq.Len() {
		fmt.Printf("... %d of %d phases shown\n", seq.Len(), n)
	}

	counts := seq.Counts()
	fmt.Printf("\nphases: %d (work %d, rest %d, reset %d)\n",
		seq.Len(), counts[interval.KindWork], counts[interval.KindRest], counts[interval.KindReset])
	fmt.Printf("total:  %s\n", interval.FormatClock(interval.Total(s)))
}
