package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled logging for runner components.
// Every entry carries the component name and the process-wide run ID so that
// lines from a batch and its item sessions can be correlated.
type Logger struct {
	runID     string
	component string
	sugar     *zap.SugaredLogger
	root      *zap.Logger
	base      *zap.Logger
	logPath   string
	file      *os.File
	closeOnce sync.Once
}

// Config controls how loggers are built.
type Config struct {
	// Level is one of debug, info, warn, error
	Level string

	// Development switches to colored console output
	Development bool

	// File optionally mirrors all entries to this path
	File string
}

var (
	// Global run ID for the current execution
	runID     string
	runIDOnce sync.Once
)

// getRunID returns or creates the run ID for this execution
func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

// ErrInvalidLevel is returned by New when Config.Level is not a known level.
// The logger is still usable and logs at info level.
var ErrInvalidLevel = errors.New("invalid log level")

// ErrLogFile is returned by New when the log file cannot be opened. The
// logger is still usable and writes to stderr only.
var ErrLogFile = errors.New("log file unavailable")

// New creates a logger for a specific component.
//
// New never logs about its own setup. When the level is invalid or the log
// file cannot be opened it still returns a working logger, along with an
// error wrapping ErrInvalidLevel and/or ErrLogFile for the caller to report.
func New(component string, cfg Config) (*Logger, error) {
	level, levelErr := parseLevel(cfg.Level)

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	var file *os.File
	if cfg.File != "" {
		if mkErr := os.MkdirAll(filepath.Dir(cfg.File), 0750); mkErr != nil {
			return newFallbackLogger(component, level, cfg.Development),
				errors.Join(levelErr, fmt.Errorf("%w: failed to create log directory: %w", ErrLogFile, mkErr))
		}
		f, openErr := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if openErr != nil {
			return newFallbackLogger(component, level, cfg.Development),
				errors.Join(levelErr, fmt.Errorf("%w: failed to open log file: %w", ErrLogFile, openErr))
		}
		sinks = append(sinks, zapcore.Lock(f))
		file = f
	}

	core := zapcore.NewCore(encoder(cfg.Development), zapcore.NewMultiWriteSyncer(sinks...), level)
	l := fromCore(component, core, cfg.File)
	l.file = file
	return l, levelErr
}

// FromZap wraps an existing zap logger. Used by tests with an observer core.
func FromZap(component string, base *zap.Logger) *Logger {
	return fromCore(component, base.Core(), "")
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return fromCore("nop", zapcore.NewNopCore(), "")
}

func fromCore(component string, core zapcore.Core, logPath string) *Logger {
	root := zap.New(core).With(zap.String("run_id", getRunID()))
	return derive(root, root.With(zap.String("component", component)), component, logPath)
}

func derive(root, base *zap.Logger, component, logPath string) *Logger {
	return &Logger{
		runID:     getRunID(),
		component: component,
		sugar:     base.Sugar(),
		root:      root,
		base:      base,
		logPath:   logPath,
	}
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, level zapcore.Level, development bool) *Logger {
	core := zapcore.NewCore(encoder(development), zapcore.Lock(os.Stderr), level)
	return fromCore(component, core, "")
}

func encoder(development bool) zapcore.Encoder {
	if development {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// parseLevel converts string level to zapcore.Level.
func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%w %q, using info", ErrInvalidLevel, level)
	}
	return l, nil
}

// Named returns a logger for a sub-component sharing the same sinks.
func (l *Logger) Named(component string) *Logger {
	return derive(l.root, l.root.With(zap.String("component", component)), component, l.logPath)
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// With returns a logger with additional structured fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return derive(l.root, l.base.With(fields...), l.component, l.logPath)
}

// Zap exposes the underlying structured logger.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Component returns the component name
func (l *Logger) Component() string {
	return l.component
}

// RunID returns the current run ID
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the path to the log file, empty when logging to stderr only
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes buffered entries and closes the log file opened by New.
// Loggers derived with Named or With never own the file. Safe to call
// multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		// Sync on stderr returns EINVAL on some platforms; only the file matters.
		_ = l.base.Sync()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetRunID returns the current global run ID
func GetRunID() string {
	return getRunID()
}
