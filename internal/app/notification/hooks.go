package notification

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/windbox/internal/app/playback"
)

// CommandRunner runs a shell command with extra environment variables.
type CommandRunner func(ctx context.Context, command string, env []string) error

// ShellRunner runs command with "sh -c" so redirection and pipes work.
func ShellRunner(ctx context.Context, command string, env []string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), env...)
	return cmd.Run()
}

// RunHooks runs each command in order. Failures are logged and do not stop
// the remaining commands.
func RunHooks(ctx context.Context, run CommandRunner, commands []string, stage string, env []string) {
	if len(commands) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(commands))

	for _, hook := range commands {
		zlog.Info().Msgf("Executing hook: %s", hook)
		if err := run(ctx, hook, env); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}

// HookSink runs shell commands for selected event types.
type HookSink struct {
	commands []string
	types    map[playback.EventType]bool
	run      CommandRunner
}

// NewHookSink creates a sink running commands on the given event types.
func NewHookSink(commands []string, types ...playback.EventType) *HookSink {
	set := make(map[playback.EventType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return &HookSink{
		commands: commands,
		types:    set,
		run:      ShellRunner,
	}
}

// Name returns the sink name.
func (h *HookSink) Name() string {
	return "hooks"
}

// Handle runs the commands if the event type is selected.
func (h *HookSink) Handle(ctx context.Context, e playback.Event) error {
	if !h.types[e.Type] {
		return nil
	}

	env := EventEnv(e)
	var errs error
	for _, command := range h.commands {
		if err := h.run(ctx, command, env); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "hook %q", command))
		}
	}
	return errs
}

// EventEnv returns the environment variables describing e.
func EventEnv(e playback.Event) []string {
	env := []string{
		"WINDBOX_EVENT=" + e.Type.String(),
		"WINDBOX_BUTTON_ID=" + strconv.Itoa(int(e.ButtonID)),
		"WINDBOX_BUTTON_NAME=" + e.ButtonName,
		"WINDBOX_TRACK=" + e.Track,
		fmt.Sprintf("WINDBOX_TRACK_NUMBER=%d/%d", e.Index+1, e.Count),
	}
	if e.Err != nil {
		env = append(env, "WINDBOX_ERROR="+e.Err.Error())
	}
	return env
}
