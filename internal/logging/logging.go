// Package logging provides the leveled logger injected into the simulation
// packages.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

// Logger is the logging interface the simulation packages depend on.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name, case-insensitive. Unknown names map to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Leveled writes messages at or above its level to a standard library logger.
type Leveled struct {
	level Level
	out   *log.Logger
}

// New returns a logger writing to stderr.
func New(level string) *Leveled {
	return NewWriter(level, os.Stderr)
}

// NewWriter returns a logger writing to w.
func NewWriter(level string, w io.Writer) *Leveled {
	return &Leveled{
		level: ParseLevel(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

func (l *Leveled) Level() Level { return l.level }

func (l *Leveled) logf(level Level, prefix, format string, v ...any) {
	if level >= l.level {
		l.out.Printf(prefix+format, v...)
	}
}

func (l *Leveled) Debugf(format string, v ...any) { l.logf(LevelDebug, "[DEBUG] ", format, v...) }
func (l *Leveled) Infof(format string, v ...any)  { l.logf(LevelInfo, "[INFO] ", format, v...) }
func (l *Leveled) Warnf(format string, v ...any)  { l.logf(LevelWarn, "[WARN] ", format, v...) }
func (l *Leveled) Errorf(format string, v ...any) { l.logf(LevelError, "[ERROR] ", format, v...) }

type nop struct{}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}

// NewNop returns a logger that discards everything.
func NewNop() Logger { return nop{} }
