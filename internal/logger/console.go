// Package logger provides leveled console logging for foundry runs.
//
// The console logger prints timestamped progress lines for probe results,
// level verdicts, healing attempts, and run summaries. Implementations are
// thread-safe; color output is enabled automatically for TTY writers.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/foundry/internal/models"
)

// Log level constants for filtering
const (
	levelDebug int = 0
	levelInfo  int = 1
	levelWarn  int = 2
	levelError int = 3
)

// ConsoleLogger logs run progress to a writer with [HH:MM:SS] timestamps.
// It satisfies the orchestrator's Logger interface. Safe for concurrent use.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger writing to the given writer.
// If writer is nil, messages are silently discarded. Valid levels: debug,
// info, warn, error (case-insensitive); empty or invalid defaults to "info".
// Color is enabled when the writer is a TTY stdout/stderr.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether the writer is a color-capable terminal.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// The color library's detection also honors NO_COLOR.
		return !color.NoColor
	}
	return false
}

// normalizeLogLevel lowercases and validates a level, defaulting to "info".
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

func logLevelToInt(level string) int {
	switch level {
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog reports whether a message at messageLevel passes the filter.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) { cl.logWithLevel("DEBUG", message) }

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) { cl.logWithLevel("INFO", message) }

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) { cl.logWithLevel("WARN", message) }

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) { cl.logWithLevel("ERROR", message) }

func (cl *ConsoleLogger) logWithLevel(level, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		cl.writer.Write([]byte(fmt.Sprintf("[%s] [%s] %s\n", ts, colorLevel(level), message)))
	} else {
		cl.writer.Write([]byte(fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)))
	}
}

func colorLevel(level string) string {
	switch level {
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogProbe logs the pre-flight probe outcome at INFO level.
func (cl *ConsoleLogger) LogProbe(unsatisfied []models.UnsatisfiedResource) {
	if len(unsatisfied) == 0 {
		cl.LogInfo("dependency probe passed")
		return
	}
	cl.LogError(fmt.Sprintf("dependency probe found %d unsatisfied resource(s)", len(unsatisfied)))
	for _, u := range unsatisfied {
		cl.LogError(fmt.Sprintf("  %s: %s", u.Resource.Name, u.Detail))
	}
}

// LogLevelStart logs the start of a validation level at DEBUG level.
func (cl *ConsoleLogger) LogLevelStart(l models.Level, checker string) {
	cl.LogDebug(fmt.Sprintf("running %s validation (%s)", l, checker))
}

// LogVerdict logs a level verdict at INFO level, with diagnostics at WARN.
func (cl *ConsoleLogger) LogVerdict(v models.ValidationVerdict) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	ts := timestamp()
	outcome := "passed"
	if !v.Passed {
		outcome = "failed"
	}
	if cl.colorOutput {
		colored := color.New(color.FgGreen).Sprint(outcome)
		if !v.Passed {
			colored = color.New(color.FgRed).Sprint(outcome)
		}
		fmt.Fprintf(cl.writer, "[%s] %s level %s (%s)\n", ts, v.Level, colored, formatDuration(v.Duration))
	} else {
		fmt.Fprintf(cl.writer, "[%s] %s level %s (%s)\n", ts, v.Level, outcome, formatDuration(v.Duration))
	}
	cl.mutex.Unlock()

	for _, d := range v.Diagnostics {
		cl.LogWarn("  " + d.String())
	}
}

// LogHealing logs a healing attempt outcome at INFO level.
func (cl *ConsoleLogger) LogHealing(a models.HealingAttempt) {
	if a.Succeeded {
		cl.LogInfo(fmt.Sprintf("healing %s level with %s: revised blueprint accepted for re-check", a.Level, a.Strategy))
		return
	}
	detail := a.Detail
	if detail == "" {
		detail = "strategy failed"
	}
	cl.LogWarn(fmt.Sprintf("healing %s level: %s", a.Level, detail))
}

// LogRunSummary logs the final run outcome at INFO level.
func (cl *ConsoleLogger) LogRunSummary(r *models.OrchestrationResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	summary := r.Summary()
	if cl.colorOutput {
		switch r.Status {
		case models.StatusSucceeded:
			summary = color.New(color.FgGreen).Sprint(summary)
		default:
			summary = color.New(color.FgRed).Sprint(summary)
		}
	}
	fmt.Fprintf(cl.writer, "[%s] %s (%s)\n", ts, summary, formatDuration(r.Duration))
}

// timestamp returns the current time formatted as HH:MM:SS.
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a duration to a compact human-readable string.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages. Useful for tests and disabled logging.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

// LogProbe is a no-op implementation.
func (n *NoOpLogger) LogProbe(unsatisfied []models.UnsatisfiedResource) {}

// LogLevelStart is a no-op implementation.
func (n *NoOpLogger) LogLevelStart(l models.Level, checker string) {}

// LogVerdict is a no-op implementation.
func (n *NoOpLogger) LogVerdict(v models.ValidationVerdict) {}

// LogHealing is a no-op implementation.
func (n *NoOpLogger) LogHealing(a models.HealingAttempt) {}

// LogRunSummary is a no-op implementation.
func (n *NoOpLogger) LogRunSummary(r *models.OrchestrationResult) {}
