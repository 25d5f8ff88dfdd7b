package scritch

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
)

// LogLevel represents the severity of a log message (higher value = higher severity)
type LogLevel int

const (
	LevelTrace  LogLevel = iota // Detailed tracing (requires enabled + category)
	LevelInfo                   // Informational messages (requires enabled + category)
	LevelDebug                  // Development debugging (requires enabled + category)
	LevelNotice                 // Notable events (always shown)
	LevelWarn                   // Warnings (always shown)
	LevelError                  // Runtime errors (always shown)
	LevelFatal                  // Unrecoverable host misuse (always shown)
)

// LogCategory represents the subsystem generating the message
type LogCategory string

const (
	CatNone     LogCategory = ""         // Uncategorized
	CatMotion   LogCategory = "motion"   // Motion instructions
	CatLooks    LogCategory = "looks"    // Looks instructions
	CatSound    LogCategory = "sound"    // Sound instructions / mixer
	CatEvent    LogCategory = "event"    // Event arming and broadcasts
	CatControl  LogCategory = "control"  // Flow control (wait, repeat, stop)
	CatSensing  LogCategory = "sensing"  // Sensors and ask/answer
	CatValue    LogCategory = "value"    // Coercion and operator evaluation
	CatVariable LogCategory = "variable" // Variable reads/writes
	CatPen      LogCategory = "pen"      // Pen layer
	CatSched    LogCategory = "sched"    // Scheduler, watchdog, contexts
)

// Entry is one record in the logger's flight recorder. Kind carries a
// stable machine-readable tag for fault classes ("infinite loop",
// "malformed block") so hosts and tests can find them without parsing
// the message text.
type Entry struct {
	Level   LogLevel
	Cat     LogCategory
	Kind    string
	Message string
}

// flightRecorderCap bounds the in-memory entry buffer; older entries
// are dropped first
const flightRecorderCap = 512

// Logger handles leveled, categorized logging for the runtime. Besides
// writing to its output streams it retains a bounded flight recorder of
// entries that the host (or a test) can query after the fact.
type Logger struct {
	mu                sync.Mutex
	enabled           bool
	enabledCategories map[LogCategory]bool
	out               io.Writer
	errOut            io.Writer
	profile           termenv.Profile
	entries           []Entry
}

// NewLogger creates a new logger. Debug-level output is gated on
// enabled; warnings and errors are always emitted.
func NewLogger(enabled bool) *Logger {
	return &Logger{
		enabled:           enabled,
		enabledCategories: make(map[LogCategory]bool),
		out:               os.Stdout,
		errOut:            os.Stderr,
		profile:           termenv.NewOutput(os.Stderr).EnvColorProfile(),
	}
}

// SetOutput redirects both output streams; tests use this to silence
// or capture log text
func (l *Logger) SetOutput(out, errOut io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
	l.errOut = errOut
	l.profile = termenv.Ascii
}

// SetEnabled enables or disables debug logging
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// EnableCategory enables debug logging for a specific category
func (l *Logger) EnableCategory(cat LogCategory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabledCategories[cat] = true
}

// DisableCategory disables debug logging for a specific category
func (l *Logger) DisableCategory(cat LogCategory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.enabledCategories, cat)
}

// EnableAllCategories enables all categories for debug logging
func (l *Logger) EnableAllCategories() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, cat := range []LogCategory{
		CatMotion, CatLooks, CatSound, CatEvent, CatControl,
		CatSensing, CatValue, CatVariable, CatPen, CatSched,
	} {
		l.enabledCategories[cat] = true
	}
}

// Entries returns a copy of the flight recorder contents, oldest first
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// HasEntry reports whether the flight recorder holds an entry at the
// given level with the given kind tag
func (l *Logger) HasEntry(level LogLevel, kind string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Level == level && e.Kind == kind {
			return true
		}
	}
	return false
}

// ClearEntries empties the flight recorder
func (l *Logger) ClearEntries() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// shouldLog determines if a message should be logged based on level and category
func (l *Logger) shouldLog(level LogLevel, cat LogCategory) bool {
	switch level {
	case LevelFatal, LevelError, LevelWarn, LevelNotice:
		return true
	case LevelDebug, LevelInfo, LevelTrace:
		return l.enabled && (cat == CatNone || l.enabledCategories[cat])
	default:
		return false
	}
}

// Log is the unified logging method; kind may be empty
func (l *Logger) Log(level LogLevel, cat LogCategory, kind, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.shouldLog(level, cat) {
		return
	}

	l.entries = append(l.entries, Entry{Level: level, Cat: cat, Kind: kind, Message: message})
	if len(l.entries) > flightRecorderCap {
		l.entries = l.entries[len(l.entries)-flightRecorderCap:]
	}

	catSuffix := ""
	if cat != CatNone {
		catSuffix = fmt.Sprintf(":%s", cat)
	}

	var prefix string
	switch level {
	case LevelTrace:
		prefix = fmt.Sprintf("[TRACE%s]", catSuffix)
	case LevelInfo:
		prefix = fmt.Sprintf("[INFO%s]", catSuffix)
	case LevelDebug:
		prefix = fmt.Sprintf("[DEBUG%s]", catSuffix)
	case LevelNotice:
		prefix = fmt.Sprintf("[scritch%s NOTICE]", catSuffix)
	case LevelWarn:
		prefix = fmt.Sprintf("[scritch%s WARN]", catSuffix)
	case LevelError, LevelFatal:
		prefix = fmt.Sprintf("[scritch%s ERROR]", catSuffix)
	}

	output := fmt.Sprintf("%s %s", prefix, message)

	if level >= LevelNotice {
		styled := termenv.String(output).Foreground(l.profile.Color("11")).String()
		_, _ = fmt.Fprintln(l.errOut, styled)
	} else {
		_, _ = fmt.Fprintln(l.out, output)
	}
}

// Convenience methods that route through Log, ordered by severity

// Fatal logs an unrecoverable host-level fault
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.Log(LevelFatal, CatNone, "", fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, CatNone, "", fmt.Sprintf(format, args...))
}

// ErrorCat logs a categorized error message
func (l *Logger) ErrorCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelError, cat, "", fmt.Sprintf(format, args...))
}

// ErrorKind logs a categorized error carrying a machine-readable kind tag
func (l *Logger) ErrorKind(cat LogCategory, kind, format string, args ...interface{}) {
	l.Log(LevelError, cat, kind, fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.Log(LevelWarn, CatNone, "", fmt.Sprintf(format, args...))
}

// WarnCat logs a categorized warning message
func (l *Logger) WarnCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelWarn, cat, "", fmt.Sprintf(format, args...))
}

// Notice logs a notable event, less severe than a warning
func (l *Logger) Notice(format string, args ...interface{}) {
	l.Log(LevelNotice, CatNone, "", fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, CatNone, "", fmt.Sprintf(format, args...))
}

// DebugCat logs a categorized debug message
func (l *Logger) DebugCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelDebug, cat, "", fmt.Sprintf(format, args...))
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, CatNone, "", fmt.Sprintf(format, args...))
}

// InfoCat logs a categorized informational message
func (l *Logger) InfoCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelInfo, cat, "", fmt.Sprintf(format, args...))
}

// TraceCat logs a categorized detailed trace message
func (l *Logger) TraceCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelTrace, cat, "", fmt.Sprintf(format, args...))
}
