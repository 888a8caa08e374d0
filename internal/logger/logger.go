// =============================================================================
// Scan Audit - Logger Module
// =============================================================================
//
// This module provides the leveled console logger used by the audit pipeline
// and the CLI commands.
//
// OUTPUT FORMAT:
//   [HH:MM:SS] [LEVEL] message
//
// The level tag is colored when the writer is a terminal.
//
// =============================================================================

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// =============================================================================
// INTERFACE
// =============================================================================

// Logger is the logging interface consumed by the audit pipeline.
// Messages are printf-style format strings.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// =============================================================================
// LEVELS
// =============================================================================

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name (case-insensitive) to a Level.
// Empty or unknown names default to LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevel reports whether name is a recognised level name.
func ValidLevel(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "debug", "trace", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// =============================================================================
// CONSOLE LOGGER
// =============================================================================

// ConsoleLogger writes timestamped, leveled messages to a writer.
// It is safe for concurrent use.
type ConsoleLogger struct {
	writer io.Writer
	level  Level
	mutex  sync.Mutex
	color  bool

	// now is replaced in tests.
	now func() time.Time
}

// NewConsoleLogger creates a ConsoleLogger that writes to w.
//
// PARAMETERS:
//   - w: The destination. A nil writer discards all messages.
//   - level: The minimum level name to output (debug, info, warn, error).
//
// RETURNS:
//   - A new ConsoleLogger. Color is enabled when w is a terminal.
func NewConsoleLogger(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer: w,
		level:  ParseLevel(level),
		color:  isTerminal(w),
		now:    time.Now,
	}
}

// isTerminal reports whether w is a terminal file that accepts color.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetLevel changes the minimum level.
func (cl *ConsoleLogger) SetLevel(level Level) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.level = level
}

// Level returns the minimum level.
func (cl *ConsoleLogger) Level() Level {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	return cl.level
}

func (cl *ConsoleLogger) Debug(msg string, args ...interface{}) { cl.log(LevelDebug, msg, args) }
func (cl *ConsoleLogger) Info(msg string, args ...interface{})  { cl.log(LevelInfo, msg, args) }
func (cl *ConsoleLogger) Warn(msg string, args ...interface{})  { cl.log(LevelWarn, msg, args) }
func (cl *ConsoleLogger) Error(msg string, args ...interface{}) { cl.log(LevelError, msg, args) }

func (cl *ConsoleLogger) log(level Level, msg string, args []interface{}) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	if level < cl.level {
		return
	}

	tag := level.String()
	if cl.color {
		tag = levelColor(level).Sprint(tag)
	}

	text := msg
	if len(args) > 0 {
		text = fmt.Sprintf(msg, args...)
	}

	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", cl.now().Format("15:04:05"), tag, text)
}

func levelColor(level Level) *color.Color {
	switch level {
	case LevelDebug:
		return color.New(color.FgCyan)
	case LevelWarn:
		return color.New(color.FgYellow)
	case LevelError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// =============================================================================
// NOP LOGGER
// =============================================================================

// Nop discards every message.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}
