// Package logger provides the production implementation of core.Logger:
// a leveled logger with structured fields and a choice of text or JSON
// line output. The level defaults to INFO and can be set explicitly or
// picked up from the LOG_LEVEL environment variable.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel converts a level name to a LogLevel, defaulting to INFO.
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// SimpleLogger is a leveled structured logger writing one line per
// entry. It implements core.Logger.
type SimpleLogger struct {
	mu     sync.Mutex
	level  LogLevel
	json   bool
	out    io.Writer
	fields map[string]interface{}
}

// Options configures a SimpleLogger.
type Options struct {
	Level  string    // "debug", "info", "warn", "error"
	Format string    // "text" or "json"
	Output io.Writer // Defaults to stderr
}

// New creates a logger from options.
func New(opts Options) *SimpleLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return &SimpleLogger{
		level:  ParseLevel(opts.Level),
		json:   strings.EqualFold(opts.Format, "json"),
		out:    out,
		fields: map[string]interface{}{},
	}
}

// NewDefault creates a text logger at the level named by LOG_LEVEL.
func NewDefault() *SimpleLogger {
	return New(Options{Level: os.Getenv("LOG_LEVEL")})
}

// Debug logs a debug message
func (l *SimpleLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(DebugLevel, "DEBUG", msg, fields)
}

// Info logs an info message
func (l *SimpleLogger) Info(msg string, fields map[string]interface{}) {
	l.log(InfoLevel, "INFO", msg, fields)
}

// Warn logs a warning message
func (l *SimpleLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(WarnLevel, "WARN", msg, fields)
}

// Error logs an error message
func (l *SimpleLogger) Error(msg string, fields map[string]interface{}) {
	l.log(ErrorLevel, "ERROR", msg, fields)
}

// SetLevel sets the minimum level emitted.
func (l *SimpleLogger) SetLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = ParseLevel(level)
}

// With returns a child logger whose entries always carry the given
// fields.
func (l *SimpleLogger) With(fields map[string]interface{}) *SimpleLogger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &SimpleLogger{
		level:  l.level,
		json:   l.json,
		out:    l.out,
		fields: merged,
	}
}

func (l *SimpleLogger) log(level LogLevel, name, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	if l.json {
		entry := make(map[string]interface{}, len(l.fields)+len(fields)+3)
		for k, v := range l.fields {
			entry[k] = v
		}
		for k, v := range fields {
			entry[k] = v
		}
		entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)
		entry["level"] = name
		entry["msg"] = msg
		_ = json.NewEncoder(l.out).Encode(entry)
		return
	}

	parts := []string{fmt.Sprintf("[%s]", name), msg}
	parts = append(parts, formatFields(l.fields)...)
	parts = append(parts, formatFields(fields)...)
	fmt.Fprintln(l.out, strings.Join(parts, " "))
}

// formatFields renders fields deterministically so log lines are
// greppable and assertable.
func formatFields(fields map[string]interface{}) []string {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return out
}
