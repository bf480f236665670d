// Package logging provides the operator-facing diagnostic logger used across
// the CFTI runtime. It is distinct from the bus's Log broadcast class: this
// package writes to the process's own stderr for whoever is running the
// supervisor, while bus Log messages are protocol traffic delivered to
// Interfaces and Loggers. Components emit to both where appropriate.
package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the severities the CFTI bus itself distinguishes
// (debug/warning/standard), kept separate from zap's own level type so
// callers never need to import zap directly.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

var (
	mu     sync.RWMutex
	logger *zap.Logger
)

// Init builds the process-wide logger. Call once at startup; safe to call
// again in tests to redirect output.
func Init(level Level, colorize bool) {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if colorize {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level.zapLevel(),
	)

	mu.Lock()
	logger = zap.New(core)
	mu.Unlock()
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		mu.RUnlock()
		Init(LevelInfo, false)
		mu.RLock()
	}
	return logger
}

func logf(level Level, subsystem, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l := current().With(zap.String("subsystem", subsystem))
	switch level {
	case LevelDebug:
		l.Debug(msg)
	case LevelWarn:
		l.Warn(msg)
	case LevelError:
		l.Error(msg)
	default:
		l.Info(msg)
	}
}

// Debug logs a low-level diagnostic message scoped to subsystem.
func Debug(subsystem, format string, args ...interface{}) { logf(LevelDebug, subsystem, format, args...) }

// Info logs a routine operational message scoped to subsystem.
func Info(subsystem, format string, args ...interface{}) { logf(LevelInfo, subsystem, format, args...) }

// Warn logs a recovered-error or unexpected-but-handled condition.
func Warn(subsystem, format string, args ...interface{}) { logf(LevelWarn, subsystem, format, args...) }

// Error logs a message together with the error that caused it.
func Error(subsystem string, err error, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	current().With(zap.String("subsystem", subsystem), zap.Error(err)).Error(msg)
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = current().Sync()
}
