// Package log is the leveled logger used by the bslflow command line tools.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Level represents log severity levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel resolves a level name such as "debug" or "WARN".
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", name)
}

// Logger interface defines structured logging methods. Args are alternating
// keys and values.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	With(args ...interface{}) Logger
	SetLevel(level Level)
	SetJSONOutput(enabled bool)
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level      Level
	JSONOutput bool
	Stderr     io.Writer
	// NoColor disables ANSI colors even on a terminal.
	NoColor bool
}

// output is shared by a logger and every child made with With.
type output struct {
	mu         sync.Mutex
	level      Level
	jsonOutput bool
	stderr     io.Writer
	colors     bool
	now        func() time.Time
}

// DefaultLogger is the default implementation of Logger
type DefaultLogger struct {
	out    *output
	fields []interface{}
}

var (
	defaultLogger *DefaultLogger
	once          sync.Once
)

// New creates a new logger with the given configuration
func New(cfg LoggerConfig) *DefaultLogger {
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	return &DefaultLogger{out: &output{
		level:      cfg.Level,
		jsonOutput: cfg.JSONOutput,
		stderr:     stderr,
		colors:     !cfg.NoColor && isTerminal(stderr),
		now:        time.Now,
	}}
}

// Default returns the default logger instance
func Default() *DefaultLogger {
	once.Do(func() {
		defaultLogger = New(LoggerConfig{Level: InfoLevel})
	})
	return defaultLogger
}

// Discard returns a logger that drops everything.
func Discard() *DefaultLogger {
	return New(LoggerConfig{Level: ErrorLevel + 1, Stderr: io.Discard, NoColor: true})
}

// isTerminal reports whether w is a terminal. NO_COLOR turns colors off.
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsTTY reports whether stderr is a terminal.
func IsTTY() bool {
	return isTerminal(os.Stderr)
}

// With returns a child logger that adds args to every message.
func (l *DefaultLogger) With(args ...interface{}) Logger {
	fields := make([]interface{}, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	return &DefaultLogger{out: l.out, fields: fields}
}

// pairs turns alternating args into key/value pairs. A leading odd value is
// kept under the "arg" key.
func pairs(args []interface{}) [][2]interface{} {
	var out [][2]interface{}
	if len(args)%2 != 0 {
		out = append(out, [2]interface{}{"arg", args[0]})
		args = args[1:]
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		out = append(out, [2]interface{}{key, args[i+1]})
	}
	return out
}

// formatMessage formats the message with key-value args
func formatMessage(msg string, kv [][2]interface{}) string {
	if len(kv) == 0 {
		return msg
	}
	var sb strings.Builder
	sb.WriteString(msg)
	for _, p := range kv {
		fmt.Fprintf(&sb, " %v=%v", p[0], p[1])
	}
	return sb.String()
}

// colorize wraps the message with ANSI color codes if colors are enabled
func (o *output) colorize(level Level, msg string) string {
	if !o.colors {
		return msg
	}
	return getColor(level) + msg + "\033[0m"
}

// getColor returns the ANSI color code for the given level
func getColor(level Level) string {
	switch level {
	case DebugLevel:
		return "\033[36m" // Cyan
	case InfoLevel:
		return "\033[32m" // Green
	case WarnLevel:
		return "\033[33m" // Yellow
	case ErrorLevel:
		return "\033[31m" // Red
	default:
		return ""
	}
}

func (l *DefaultLogger) log(level Level, msg string, args []interface{}) {
	o := l.out
	o.mu.Lock()
	defer o.mu.Unlock()
	if level < o.level {
		return
	}

	kv := pairs(append(append([]interface{}{}, l.fields...), args...))
	timestamp := o.now().Format("2006-01-02 15:04:05")

	if o.jsonOutput {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level.String(),
			"message":   msg,
		}
		for _, p := range kv {
			key := fmt.Sprint(p[0])
			if _, taken := entry[key]; taken {
				key = "field." + key
			}
			if err, ok := p[1].(error); ok {
				entry[key] = err.Error()
			} else {
				entry[key] = p[1]
			}
		}
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(o.stderr, "[%s] %s: %s\n", timestamp, level, formatMessage(msg, kv))
			return
		}
		fmt.Fprintln(o.stderr, string(data))
		return
	}

	fmt.Fprintf(o.stderr, "[%s] %s: %s\n", timestamp, level, o.colorize(level, formatMessage(msg, kv)))
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, args ...interface{}) { l.log(DebugLevel, msg, args) }

// Info logs an info message
func (l *DefaultLogger) Info(msg string, args ...interface{}) { l.log(InfoLevel, msg, args) }

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, args ...interface{}) { l.log(WarnLevel, msg, args) }

// Error logs an error message
func (l *DefaultLogger) Error(msg string, args ...interface{}) { l.log(ErrorLevel, msg, args) }

// SetLevel sets the minimum log level
func (l *DefaultLogger) SetLevel(level Level) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.level = level
}

// SetJSONOutput enables or disables JSON output
func (l *DefaultLogger) SetJSONOutput(enabled bool) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.jsonOutput = enabled
}
