// Package logger wraps charmbracelet/log behind a process-wide instance so
// every package logs with the same level and format.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

type Logger struct {
	*log.Logger
}

var (
	instance *Logger
	once     sync.Once
)

// Get returns the singleton logger, writing to stderr so digest output on
// stdout stays machine-readable.
func Get() *Logger {
	once.Do(func() {
		instance = &Logger{
			Logger: log.NewWithOptions(os.Stderr, log.Options{
				Level:           log.WarnLevel,
				ReportTimestamp: false,
			}),
		}
		if level := os.Getenv("GOSUM_LOG_LEVEL"); level != "" {
			instance.SetLogLevel(level)
		}
	})
	return instance
}

// SetLogLevel sets the level from a config or environment string; unknown
// values fall back to warn.
func (l *Logger) SetLogLevel(level string) {
	parsed := log.WarnLevel
	switch strings.ToLower(level) {
	case "debug":
		parsed = log.DebugLevel
	case "info":
		parsed = log.InfoLevel
	case "warn", "warning":
		parsed = log.WarnLevel
	case "error":
		parsed = log.ErrorLevel
	case "fatal":
		parsed = log.FatalLevel
	}
	l.SetLevel(parsed)
}

// Configure applies the logging configuration: the enabled switch, the
// level and an optional log file appended to instead of stderr.
func Configure(enabled bool, level, file string) error {
	l := Get()
	if !enabled {
		l.SetOutput(io.Discard)
		return nil
	}
	l.SetLogLevel(level)
	if file == "" {
		l.SetOutput(os.Stderr)
		return nil
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	l.SetOutput(f)
	return nil
}

func Debug(msg string, keyvals ...interface{}) {
	Get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	Get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	Get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	Get().Error(msg, keyvals...)
}
