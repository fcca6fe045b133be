package ldi

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the structured leveled sink every component logs through.
// A *logrus.Entry does not satisfy it directly (its WithField/WithFields
// return *logrus.Entry); NewLogger and NopLogger wrap one in entryLogger,
// which does. The spec's 1..4 level numbering
// (error, warning, info, verbose) maps onto Error/Warn/Info/Debug below.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields logrus.Fields) Logger
	Error(args ...any)
	Warn(args ...any)
	Info(args ...any)
	Debug(args ...any)
}

type entryLogger struct {
	*logrus.Entry
}

func (l entryLogger) WithField(key string, value any) Logger {
	return entryLogger{l.Entry.WithField(key, value)}
}

func (l entryLogger) WithFields(fields logrus.Fields) Logger {
	return entryLogger{l.Entry.WithFields(fields)}
}

// NewLogger wraps a *logrus.Logger, tagging every record with a component
// name so a single stream can be filtered per subsystem.
func NewLogger(base *logrus.Logger, component string) Logger {
	if base == nil {
		base = logrus.New()
	}
	return entryLogger{base.WithField("component", component)}
}

// NopLogger returns a logger that discards everything, the equivalent of
// the original's null write callback.
func NopLogger() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return entryLogger{logrus.NewEntry(l)}
}
