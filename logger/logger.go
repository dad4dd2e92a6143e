package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	NONE  LogLevel = iota // Only errors and start/end messages
	STEPS                 // Show which steps are taken
	FULL                  // Show detailed information about each step
)

type Logger struct {
	level LogLevel
	entry *logrus.Logger
}

var globalLogger *Logger

// Initialize the global logger
func init() {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    false,
	})
	// Filtering by level is done here, not by logrus, so that Error/Info
	// always print regardless of the configured LogLevel.
	l.SetLevel(logrus.TraceLevel)

	globalLogger = &Logger{
		level: NONE,
		entry: l,
	}
}

// SetLevel sets the log level for the global logger
func SetLevel(level LogLevel) {
	globalLogger.level = level
}

// ParseLevel converts a string to a LogLevel
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "full":
		return FULL
	case "steps":
		return STEPS
	case "none":
		return NONE
	default:
		return NONE
	}
}

// Error always prints (regardless of log level)
func Error(format string, args ...interface{}) {
	globalLogger.entry.Errorf(format, args...)
}

// Info prints only start/end messages and errors (always printed)
func Info(format string, args ...interface{}) {
	globalLogger.entry.Infof(format, args...)
}

// Step prints step information (printed at STEPS and FULL levels)
func Step(format string, args ...interface{}) {
	if globalLogger.level >= STEPS {
		globalLogger.entry.Debugf(format, args...)
	}
}

// Detail prints detailed information (printed only at FULL level)
func Detail(format string, args ...interface{}) {
	if globalLogger.level >= FULL {
		globalLogger.entry.Tracef(format, args...)
	}
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	return globalLogger.level
}
