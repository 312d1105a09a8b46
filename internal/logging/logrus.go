package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements Logger on top of logrus.
type LogrusLogger struct {
	base  *logrus.Logger
	entry *logrus.Entry
}

// New returns a text logger writing to w at the given level. A nil writer
// selects stderr so stdout stays free for reports.
func New(w io.Writer, level Level) *LogrusLogger {
	if w == nil {
		w = os.Stderr
	}

	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	base.SetLevel(toLogrus(level))

	return &LogrusLogger{base: base, entry: logrus.NewEntry(base)}
}

func toLogrus(l Level) logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *LogrusLogger) with(fields []Fields) *logrus.Entry {
	e := l.entry
	for _, f := range fields {
		e = e.WithFields(logrus.Fields(f))
	}
	return e
}

func (l *LogrusLogger) Debug(msg string, fields ...Fields) { l.with(fields).Debug(msg) }
func (l *LogrusLogger) Info(msg string, fields ...Fields)  { l.with(fields).Info(msg) }
func (l *LogrusLogger) Warn(msg string, fields ...Fields)  { l.with(fields).Warn(msg) }

func (l *LogrusLogger) Error(err error, msg string, fields ...Fields) {
	e := l.with(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

func (l *LogrusLogger) WithFields(fields Fields) Logger {
	return &LogrusLogger{base: l.base, entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	if f, ok := fieldsFromContext(ctx); ok {
		return l.WithFields(f)
	}
	return l
}

// SetLevel changes the level of the underlying logrus logger, which is
// shared by all loggers derived through WithFields.
func (l *LogrusLogger) SetLevel(level Level) {
	l.base.SetLevel(toLogrus(level))
}
