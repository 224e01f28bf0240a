package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var defaultLogger *logrus.Logger

// Initialize sets up the global logger with the specified level and format.
func Initialize(level, format string) {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	defaultLogger = l
}

// Get returns the default logger.
func Get() *logrus.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

func fields(args []any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		f[key] = args[i+1]
	}
	return f
}

// Debug logs a debug message with key/value pairs.
func Debug(msg string, args ...any) {
	Get().WithFields(fields(args)).Debug(msg)
}

// Info logs an info message with key/value pairs.
func Info(msg string, args ...any) {
	Get().WithFields(fields(args)).Info(msg)
}

// Warn logs a warning message with key/value pairs.
func Warn(msg string, args ...any) {
	Get().WithFields(fields(args)).Warn(msg)
}

// Error logs an error message with key/value pairs.
func Error(msg string, args ...any) {
	Get().WithFields(fields(args)).Error(msg)
}

// WithService returns an entry with the service name attached.
func WithService(serviceName string) *logrus.Entry {
	return Get().WithField("service", serviceName)
}
