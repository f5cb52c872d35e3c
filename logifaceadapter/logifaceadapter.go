// Package logifaceadapter bridges a github.com/joeycumines/logiface
// logger into core.Logger, futurecore's optional structured logging
// hook. Callers already using logiface can plug their logger straight
// into futurecore's debug tracing instead of the no-op default:
//
//	core.SetStructuredLogger(logifaceadapter.New(myLogger.Logger()))
package logifaceadapter

import (
	"github.com/joeycumines/futurecore/core"
	"github.com/joeycumines/logiface"
)

// New wraps l as a core.Logger, suitable for core.WithLogger or
// core.SetStructuredLogger. The generified *logiface.Logger[logiface.Event]
// is obtained from any typed logiface logger via its Logger method.
//
// A nil or unwritable l produces an adapter that reports every level
// disabled, matching core's no-op default.
func New(l *logiface.Logger[logiface.Event]) core.Logger {
	return adapter{l}
}

type adapter struct {
	l *logiface.Logger[logiface.Event]
}

// mapLevel translates core's two-level enum onto the syslog-flavoured
// logiface levels.
func mapLevel(level core.LogLevel) logiface.Level {
	switch level {
	case core.LevelDebug:
		return logiface.LevelDebug
	case core.LevelWarn:
		return logiface.LevelWarning
	default:
		return logiface.LevelError
	}
}

func (a adapter) IsEnabled(level core.LogLevel) bool {
	lvl := a.l.Level()
	return lvl != logiface.LevelDisabled && mapLevel(level) <= lvl
}

func (a adapter) Log(entry core.LogEntry) {
	b := a.l.Build(mapLevel(entry.Level))
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}
