package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes diagnostics to stderr and, when configured, to a log file.
// Command output meant for the user goes to stdout instead.
type Logger struct {
	zl zerolog.Logger
	f  *os.File
}

func NewLogger(cfg LogConfig) (*Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfig, out io.Writer) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := &Logger{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.f = f
		out = zerolog.MultiLevelWriter(out, f)
	}

	l.zl = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return l, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger(), f: l.f}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger(), f: l.f}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Log writes an info line.
func (l *Logger) Log(format string, args ...interface{}) {
	l.Infof(format, args...)
}

// LogError writes a categorized error with its fields.
func (l *Logger) LogError(procErr *ProcessError) {
	ev := l.zl.Warn()
	if procErr.Severity != ErrorSeverityWarning {
		ev = l.zl.Error()
	}
	ev.Str("file", procErr.FilePath).
		Str("category", string(procErr.Category)).
		Str("severity", string(procErr.Severity)).
		Err(procErr.OriginalErr).
		Msg(procErr.Suggestion)
}

// Close closes the log file, if any. Derived loggers share it.
func (l *Logger) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}
