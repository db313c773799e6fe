package logging

import (
	"os"
	"sync/atomic"
)

var globalLogger atomic.Pointer[Logger]

// The process-wide logger starts from LOG_LEVEL and LOG_COLOR so that packages
// logging during init see the right level before config.Load runs.
func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	globalLogger.Store(New(Config{
		Level:       level,
		Output:      os.Stdout,
		EnableColor: os.Getenv("LOG_COLOR") != "false",
	}))
}

// Global returns the process-wide logger
func Global() *Logger {
	return globalLogger.Load()
}

// Configure replaces the process-wide logger
func Configure(config Config) {
	globalLogger.Store(New(config))
}

// WithPrefix returns a prefixed child of the process-wide logger
func WithPrefix(prefix string) *Logger {
	return Global().WithPrefix(prefix)
}

func Debugf(format string, args ...interface{}) { Global().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { Global().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Global().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Global().Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { Global().Fatalf(format, args...) }

func Info(args ...interface{})  { Global().Info(args...) }
func Warn(args ...interface{})  { Global().Warn(args...) }
func Error(args ...interface{}) { Global().Error(args...) }
func Fatal(args ...interface{}) { Global().Fatal(args...) }
