package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/harrison/foundry/internal/models"
)

// Markdown renders the result as a markdown document suitable for commit
// comments or dashboards.
func Markdown(r *models.OrchestrationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Validation report: %s\n\n", r.Blueprint)
	fmt.Fprintf(&b, "- **Run:** `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- **Status:** %s\n", r.Status)
	if r.Status == models.StatusFailed {
		fmt.Fprintf(&b, "- **Failed at:** %s level\n", r.FailedLevel)
	}
	fmt.Fprintf(&b, "- **Duration:** %s\n\n", r.Duration)

	if len(r.Unsatisfied) > 0 {
		b.WriteString("## Unsatisfied dependencies\n\n")
		b.WriteString("| Resource | Kind | Detail |\n|---|---|---|\n")
		for _, u := range r.Unsatisfied {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", u.Resource.Name, u.Resource.Kind, u.Detail)
		}
		b.WriteString("\n")
	}

	if len(r.Verdicts) > 0 {
		b.WriteString("## Levels\n\n")
		b.WriteString("| Level | Outcome | Duration | Diagnostics |\n|---|---|---|---|\n")
		for _, v := range r.Verdicts {
			outcome := "pass"
			if !v.Passed {
				outcome = "fail"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", v.Level, outcome, v.Duration, len(v.Diagnostics))
		}
		b.WriteString("\n")

		for _, v := range r.Verdicts {
			if v.Passed {
				continue
			}
			fmt.Fprintf(&b, "### %s diagnostics\n\n", v.Level)
			for _, d := range v.Diagnostics {
				fmt.Fprintf(&b, "- %s\n", d.String())
			}
			b.WriteString("\n")
		}
	}

	if len(r.Healing) > 0 {
		b.WriteString("## Healing\n\n")
		for _, a := range r.Healing {
			outcome := "revised blueprint accepted"
			if !a.Succeeded {
				outcome = failDetail(a)
			}
			fmt.Fprintf(&b, "- %s level, %s: %s\n", a.Level, strategyLabel(a), outcome)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\n%s\n", r.Summary())
	return b.String()
}

// HTML renders the markdown report to a standalone HTML fragment. Table
// support comes from the GFM extension.
func HTML(r *models.OrchestrationResult) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var out bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &out); err != nil {
		return "", fmt.Errorf("render report html: %w", err)
	}
	return out.String(), nil
}
