// Package bclog wires the engine's diagnostic logging to go-kit's logfmt
// logger, the same way the rest of this module's ancestry initialises its
// loggers, gated by a numeric log level read once from the environment.
package bclog

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Level mirrors the Python-logging-style numeric levels the host program's
// BCLIBC_LOG_LEVEL environment variable is expressed in.
type Level int

const (
	LevelNotset   Level = 0
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

const envVar = "BCLIBC_LOG_LEVEL"

var (
	once      sync.Once
	minLevel  Level = LevelCritical
	logger    kitlog.Logger
)

// initOnce reads BCLIBC_LOG_LEVEL exactly once; subsequent calls to Logger,
// Warnf or Infof see the cached value regardless of later environment changes.
func initOnce() {
	once.Do(func() {
		logger = level.NewFilter(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)), levelOption(minLevel))
		logger = kitlog.With(logger, "component", "ballistics")

		raw, ok := os.LookupEnv(envVar)
		if !ok {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return
		}
		minLevel = Level(n)
		logger = level.NewFilter(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)), levelOption(minLevel))
		logger = kitlog.With(logger, "component", "ballistics")
	})
}

func levelOption(l Level) level.Option {
	switch {
	case l <= LevelDebug:
		return level.AllowDebug()
	case l <= LevelInfo:
		return level.AllowInfo()
	case l <= LevelWarning:
		return level.AllowWarn()
	case l <= LevelError:
		return level.AllowError()
	default:
		return level.AllowNone()
	}
}

// Logger returns the process-wide logger, initialising it from
// BCLIBC_LOG_LEVEL on first use.
func Logger() kitlog.Logger {
	initOnce()
	return logger
}

// Warnf logs a formatted warning-level message with a "msg" key, matching
// the go-kit logfmt convention used elsewhere in this module.
func Warnf(format string, args ...interface{}) {
	level.Warn(Logger()).Log("msg", fmt.Sprintf(format, args...))
}

// Infof logs a formatted info-level message.
func Infof(format string, args ...interface{}) {
	level.Info(Logger()).Log("msg", fmt.Sprintf(format, args...))
}
