// Package logger provides the process-wide structured logger for governor.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance used throughout governor.
var Logger *log.Logger

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetReportTimestamp(true)
	Logger.SetLevel(log.InfoLevel)
}

// Options controls how Configure builds the global logger.
type Options struct {
	Level string
	File  string
	// JSON switches the output to one JSON object per line.
	JSON bool
	// TestMode drops timestamps so output is deterministic.
	TestMode bool
}

// Configure replaces the global logger according to opts.
func Configure(opts Options) error {
	var output io.Writer = os.Stderr
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		output = file
	}

	Logger = New(output, opts)
	return nil
}

// New builds a logger writing to w without touching the global instance.
func New(w io.Writer, opts Options) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: !opts.TestMode,
		Level:           parseLogLevel(opts.Level),
	})
	if opts.JSON {
		l.SetFormatter(log.JSONFormatter)
	}
	return l
}

// parseLogLevel converts string to log level
func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// With returns a child logger carrying the given key-value pairs.
func With(keyvals ...interface{}) *log.Logger {
	return Logger.With(keyvals...)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// Fatal logs a fatal message with optional key-value pairs and exits.
func Fatal(msg interface{}, keyvals ...interface{}) {
	Logger.Fatal(msg, keyvals...)
}
