// Package report renders orchestration results for humans and machines:
// a colored console summary, stable JSON for tooling, and a markdown report
// that can be rendered to HTML.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/foundry/internal/models"
)

// Console writes a human-readable result summary to a writer.
type Console struct {
	writer   io.Writer
	useColor bool
}

// NewConsole creates a console renderer. Color is applied only when enabled;
// callers pass the TTY decision in so output piped to files stays plain.
func NewConsole(w io.Writer, useColor bool) *Console {
	return &Console{writer: w, useColor: useColor}
}

func (c *Console) pass(s string) string {
	if c.useColor {
		return color.New(color.FgGreen).Sprint(s)
	}
	return s
}

func (c *Console) fail(s string) string {
	if c.useColor {
		return color.New(color.FgRed).Sprint(s)
	}
	return s
}

func (c *Console) dim(s string) string {
	if c.useColor {
		return color.New(color.Faint).Sprint(s)
	}
	return s
}

// Render writes the full result summary.
func (c *Console) Render(r *models.OrchestrationResult) {
	fmt.Fprintf(c.writer, "Blueprint: %s\n", r.Blueprint)
	fmt.Fprintf(c.writer, "Run:       %s\n", c.dim(r.RunID))

	if r.Status == models.StatusDependencyUnmet {
		fmt.Fprintf(c.writer, "Status:    %s\n\n", c.fail("DEPENDENCY UNMET"))
		for _, u := range r.Unsatisfied {
			fmt.Fprintf(c.writer, "  %s %s (%s): %s\n",
				c.fail("✗"), u.Resource.Name, u.Resource.Kind, u.Detail)
		}
		return
	}

	switch r.Status {
	case models.StatusSucceeded:
		fmt.Fprintf(c.writer, "Status:    %s\n\n", c.pass("SUCCEEDED"))
	default:
		fmt.Fprintf(c.writer, "Status:    %s at %s level\n\n", c.fail("FAILED"), r.FailedLevel)
	}

	for _, v := range r.Verdicts {
		mark := c.pass("✓")
		if !v.Passed {
			mark = c.fail("✗")
		}
		fmt.Fprintf(c.writer, "  %s %-16s %s\n", mark, v.Level.String(), c.dim(v.Duration.String()))
		for _, d := range v.Diagnostics {
			fmt.Fprintf(c.writer, "      %s\n", d.String())
		}
	}

	if len(r.Healing) > 0 {
		fmt.Fprintf(c.writer, "\nHealing:\n")
		for _, a := range r.Healing {
			outcome := c.pass("revised")
			if !a.Succeeded {
				outcome = c.fail(failDetail(a))
			}
			fmt.Fprintf(c.writer, "  %s level: %s → %s\n", a.Level, strategyLabel(a), outcome)
		}
	}

	fmt.Fprintf(c.writer, "\n%s\n", r.Summary())
}

func strategyLabel(a models.HealingAttempt) string {
	if a.Strategy == "" {
		return "(no strategy bound)"
	}
	return a.Strategy
}

func failDetail(a models.HealingAttempt) string {
	if a.Detail == "" {
		return "failed"
	}
	return a.Detail
}

// RenderTransitions writes the state trace on one line, for verbose output.
func (c *Console) RenderTransitions(r *models.OrchestrationResult) {
	fmt.Fprintf(c.writer, "Trace: %s\n", c.dim(strings.Join(r.Transitions, " → ")))
}
