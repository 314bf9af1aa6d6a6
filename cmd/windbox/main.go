// Package main provides the windbox entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/windbox/internal/app/input"
	"github.com/osa030/windbox/internal/app/jukebox"
	"github.com/osa030/windbox/internal/app/notification"
	"github.com/osa030/windbox/internal/app/playback"
	"github.com/osa030/windbox/internal/infra/audio"
	"github.com/osa030/windbox/internal/infra/config"
	"github.com/osa030/windbox/internal/infra/keyboard"
	"github.com/osa030/windbox/internal/infra/logger"
)

var (
	app        = kingpin.New("windbox", "windbox button jukebox")
	configPath = app.Flag("config", "Path to config file").Default("config/windbox.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-buttons command
	listButtonsCmd = app.Command("list-buttons", "List configured buttons and their tracks and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the jukebox (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Console logger until the config is loaded
	closer, err := logger.Init(loggerConfig(config.LogConfig{Output: "stdout", Level: "info"}))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Handle list-buttons command
	if command == listButtonsCmd.FullCommand() {
		if err := listButtons(os.Stdout, cfg); err != nil {
			zlog.Fatal().Msgf("Failed to list buttons: %v", err)
		}
		return
	}

	_ = closer.Close()
	closer, err = logger.Init(loggerConfig(cfg.Log))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Run jukebox (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Jukebox error: %v", err)
		_ = closer.Close()
		os.Exit(1)
	}
	_ = closer.Close()
}

// loggerConfig builds the logger configuration.
// Command-line flags override the config file.
func loggerConfig(cfg config.LogConfig) logger.Config {
	lc := logger.Config{
		Output:     cfg.Output,
		Level:      cfg.Level,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	}
	if *verbose {
		lc.Level = "debug"
	}
	if *logfile != "" {
		lc.Output = "file"
		lc.File = *logfile
	}
	return lc
}

// run executes the main jukebox logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	player, err := newPlayer(cfg.Playback)
	if err != nil {
		return errors.Wrap(err, "failed to create player")
	}

	source, err := input.NewSourceFromConfig(cfg.Input)
	if err != nil {
		_ = player.Close()
		return errors.Wrap(err, "failed to create input source")
	}

	mgr, err := jukebox.NewManager(cfg, jukebox.Deps{
		Player: player,
		Source: source,
	})
	if err != nil {
		_ = source.Close()
		_ = player.Close()
		return errors.Wrap(err, "failed to create jukebox")
	}

	// Setup shutdown hook (defer ensures it runs on any exit from this function)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Hooks.Timeout())
		defer cancel()
		notification.RunHooks(ctx, notification.ShellRunner, cfg.Hooks.OnStopped, "on_stopped", nil)
	}()
	defer func() {
		if err := mgr.Close(); err != nil {
			zlog.Error().Msgf("Failed to close jukebox: %v", err)
		}
		zlog.Info().Msg("Jukebox stopped")
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Execute startup hook if configured
	hookCtx, cancel := context.WithTimeout(ctx, cfg.Hooks.Timeout())
	notification.RunHooks(hookCtx, notification.ShellRunner, cfg.Hooks.OnStarted, "on_started", nil)
	cancel()

	zlog.Info().Msgf("Starting jukebox: run_id=%s driver=%s backend=%s", mgr.RunID(), cfg.Input.Driver, cfg.Playback.Backend)
	err = mgr.Run(ctx)
	if errors.Is(err, keyboard.ErrQuit) {
		zlog.Info().Msg("Quit requested from keyboard")
		return nil
	}
	if err != nil {
		return err
	}
	zlog.Info().Msg("Received shutdown signal...")
	return nil
}

// closablePlayer is a player owning an output device.
type closablePlayer interface {
	playback.Player
	io.Closer
}

// newPlayer creates the configured playback backend.
func newPlayer(cfg config.PlaybackConfig) (closablePlayer, error) {
	switch cfg.Backend {
	case "speaker":
		player, err := audio.NewSpeakerPlayer(audio.Config{
			SampleRate: cfg.SampleRate,
			Buffer:     cfg.Buffer(),
		})
		if err != nil {
			return nil, err
		}
		return player, nil
	case "simulated":
		zlog.Warn().Msgf("Using simulated playback: track_length=%v", cfg.SimulatedTrackLength())
		return audio.NewSimulatedPlayer(cfg.SimulatedTrackLength()), nil
	default:
		return nil, errors.Newf("unsupported playback backend: %s", cfg.Backend)
	}
}
