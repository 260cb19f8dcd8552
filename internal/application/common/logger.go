package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
)

// Logger provides structured logging for application workflows
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return &noOpLogger{}
}

// noOpLogger is a logger that does nothing (fallback when no logger in context)
type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {
	// Do nothing
}

var levelRank = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// StdLogger writes log lines through the standard library logger, dropping
// entries below the configured level. Format is "text" or "json".
type StdLogger struct {
	logger *log.Logger
	min    int
	json   bool
}

// NewStdLogger creates a logger writing to out
func NewStdLogger(out io.Writer, level, format string) *StdLogger {
	min, ok := levelRank[strings.ToUpper(level)]
	if !ok {
		min = levelRank["INFO"]
	}
	return &StdLogger{
		logger: log.New(out, "", log.LstdFlags|log.LUTC),
		min:    min,
		json:   strings.EqualFold(format, "json"),
	}
}

// Log writes one entry
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	level = strings.ToUpper(level)
	if rank, ok := levelRank[level]; ok && rank < l.min {
		return
	}

	if l.json {
		entry := make(map[string]interface{}, len(metadata)+2)
		for k, v := range metadata {
			entry[k] = v
		}
		entry["level"] = level
		entry["message"] = message
		data, err := json.Marshal(entry)
		if err != nil {
			l.logger.Printf("[%s] %s (metadata not serializable: %v)", level, message, err)
			return
		}
		l.logger.Print(string(data))
		return
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	l.logger.Print(b.String())
}
