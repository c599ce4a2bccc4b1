package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// LevelFromEnv reads the RAT_LOG environment variable. Unset or unrecognized
// values fall back to WARN so normal command output stays clean.
func LevelFromEnv() LogLevel {
	switch strings.ToLower(os.Getenv("RAT_LOG")) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "error":
		return ERROR
	default:
		return WARN
	}
}

// Logger provides leveled logging with key=value context pairs.
type Logger struct {
	level  LogLevel
	prefix string
}

// NewLogger creates a new logger with the specified level and prefix
func NewLogger(level LogLevel, prefix string) *Logger {
	return &Logger{
		level:  level,
		prefix: prefix,
	}
}

// SetLevel changes the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level >= l.level
}

// format renders a log line as timestamp, level, prefix, message, then the
// structured key/value pairs from args.
func (l *Logger) format(level LogLevel, message string, args ...interface{}) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	levelStr := levelNames[level]

	var baseMessage string
	if l.prefix != "" {
		baseMessage = fmt.Sprintf("[%s] %s [%s] %s", timestamp, levelStr, l.prefix, message)
	} else {
		baseMessage = fmt.Sprintf("[%s] %s %s", timestamp, levelStr, message)
	}

	if len(args) > 0 {
		var kvPairs []string
		for i := 0; i < len(args); i += 2 {
			key := fmt.Sprintf("%v", args[i])
			if i+1 < len(args) {
				kvPairs = append(kvPairs, fmt.Sprintf("%s=%v", key, args[i+1]))
			} else {
				kvPairs = append(kvPairs, fmt.Sprintf("%s=<missing_value>", key))
			}
		}
		baseMessage += " " + strings.Join(kvPairs, " ")
	}

	return baseMessage
}

// Debug logs a debug message
func (l *Logger) Debug(message string, args ...interface{}) {
	if l.shouldLog(DEBUG) {
		log.Println(l.format(DEBUG, message, args...))
	}
}

// Info logs an info message
func (l *Logger) Info(message string, args ...interface{}) {
	if l.shouldLog(INFO) {
		log.Println(l.format(INFO, message, args...))
	}
}

// Warn logs a warning message
func (l *Logger) Warn(message string, args ...interface{}) {
	if l.shouldLog(WARN) {
		log.Println(l.format(WARN, message, args...))
	}
}

// Error logs an error message
func (l *Logger) Error(message string, args ...interface{}) {
	if l.shouldLog(ERROR) {
		log.Println(l.format(ERROR, message, args...))
	}
}

// WithPrefix creates a new logger with a different prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{
		level:  l.level,
		prefix: prefix,
	}
}

// Global logger instance
var defaultLogger = NewLogger(LevelFromEnv(), "")

// SetDefaultLevel sets the default logging level
func SetDefaultLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}

// Debug logs a debug message using the default logger
func Debug(message string, args ...interface{}) {
	defaultLogger.Debug(message, args...)
}

// Info logs an info message using the default logger
func Info(message string, args ...interface{}) {
	defaultLogger.Info(message, args...)
}

// Warn logs a warning message using the default logger
func Warn(message string, args ...interface{}) {
	defaultLogger.Warn(message, args...)
}

// Error logs an error message using the default logger
func Error(message string, args ...interface{}) {
	defaultLogger.Error(message, args...)
}

// WithPrefix creates a new logger with a different prefix using the default logger
func WithPrefix(prefix string) *Logger {
	return &Logger{
		level:  defaultLogger.level,
		prefix: prefix,
	}
}
