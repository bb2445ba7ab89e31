// Package logger is managerh's zap setup.
//
// One process-wide logger is built at startup from log.level and log.format.
// Every entry carries service=managerh. HTTP handlers should not log through
// the globals directly: the request middleware stores a child logger tagged
// with request_id (and tenant_id once a session is resolved), and
// FromContext hands it back. The level lives in a shared AtomicLevel that the
// router exposes at /log/level, so operators can turn on debug output for a
// running instance without a restart.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry written by the global logger.
const ServiceName = "managerh"

// Output formats accepted by Init. Anything else falls back to FormatJSON.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	global      *zap.Logger
	atomicLevel = zap.NewAtomicLevel()
	once        sync.Once
	nop         = zap.NewNop()
)

// Init builds the global logger. Only the first call has any effect; later
// calls return nil so the seed tool and tests can call it freely.
func Init(level, format string) error {
	var initErr error
	once.Do(func() {
		if err := atomicLevel.UnmarshalText([]byte(level)); err != nil {
			initErr = fmt.Errorf("parse log level %q: %w", level, err)
			return
		}
		l, err := newConfig(format).Build(
			zap.AddCallerSkip(1),
			zap.Fields(zap.String("service", ServiceName)),
		)
		if err != nil {
			initErr = fmt.Errorf("build logger: %w", err)
			return
		}
		global = l
	})
	return initErr
}

// newConfig returns the zap config for format, bound to the shared level.
// Sampling is off: failed logins and storage outages must not be dropped
// under load.
func newConfig(format string) zap.Config {
	var cfg zap.Config
	if format == FormatConsole {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Sampling = nil
	cfg.Level = atomicLevel
	return cfg
}

// SetLevel changes the level of the running logger.
func SetLevel(level string) error {
	return atomicLevel.UnmarshalText([]byte(level))
}

// GetLevel returns the current level.
func GetLevel() zapcore.Level {
	return atomicLevel.Level()
}

// L returns the global logger, or a no-op logger before Init. Stores and
// worker pools log through it and are built in tests without Init.
func L() *zap.Logger {
	if global == nil {
		return nop
	}
	return global
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Fatal logs and exits. Only the cmd/ entry points may call it.
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

// LevelHandler is mounted by the router at /log/level.
//
//	GET /log/level                           {"level":"info"}
//	PUT /log/level -d '{"level":"debug"}'    switch to debug
func LevelHandler() *zap.AtomicLevel {
	return &atomicLevel
}

// Sync flushes buffered entries. Call it once on shutdown.
func Sync() error {
	if global == nil {
		return nil
	}
	return global.Sync()
}
