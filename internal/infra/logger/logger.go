// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config represents logger configuration.
type Config struct {
	Output     string // "stdout", "stderr", or "file"
	Level      string // "debug", "info", "warn", "error"
	File       string // log file path (used when Output is not stdout/stderr)
	MaxSizeMB  int    // rotate after this many megabytes
	MaxBackups int    // rotated files to keep
	MaxAgeDays int    // days to keep rotated files
}

// Init initializes the global zerolog logger with the given configuration.
// It returns a closer that flushes the file writer, if any.
func Init(cfg Config) (io.Closer, error) {
	level := parseLevel(cfg.Level)

	writer, closer, err := newWriter(cfg)
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		parts := strings.Split(file, string(filepath.Separator))
		if len(parts) > 1 {
			return filepath.Join(parts[len(parts)-2:]...) + ":" + strconv.Itoa(line)
		}
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}

	logger := newLogger(writer, isConsole(cfg.Output), level)
	zerolog.DefaultContextLogger = &logger
	zlog.Logger = logger

	return closer, nil
}

// newWriter opens the destination for log output.
func newWriter(cfg Config) (io.Writer, io.Closer, error) {
	if isConsole(cfg.Output) {
		if strings.ToLower(cfg.Output) == "stderr" {
			return os.Stderr, nopCloser{}, nil
		}
		return os.Stdout, nopCloser{}, nil
	}

	path := cfg.File
	if path == "" {
		path = cfg.Output
	}
	if path == "" || strings.ToLower(path) == "file" {
		return nil, nil, errors.New("log file path is required for file output")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create log directory for %s", path)
	}

	// Rotate so a long running device does not fill its card
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}
	return lj, lj, nil
}

// newLogger builds a console logger with colors or a JSON logger for files.
// Caller info is only added at debug level.
func newLogger(writer io.Writer, console bool, level zerolog.Level) zerolog.Logger {
	if !console {
		baseLogger := zerolog.New(writer).With().Timestamp()
		if level == zerolog.DebugLevel {
			return baseLogger.Caller().Logger()
		}
		return baseLogger.Logger()
	}

	if level == zerolog.DebugLevel {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.TimeOnly,
			PartsOrder: []string{"time", "level", "message", "caller"},
			FormatCaller: func(i interface{}) string {
				return "(" + i.(string) + ")"
			},
		}).With().Timestamp().Caller().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        writer,
		TimeFormat: time.TimeOnly,
	}).With().Timestamp().Logger()
}

func isConsole(output string) bool {
	switch strings.ToLower(output) {
	case "stdout", "stderr", "":
		return true
	}
	return false
}

// parseLevel parses the log level string.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
