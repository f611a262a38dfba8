// Package level implements the four ordered validation levels applied to a
// blueprint before generation: framework, component-logic, integration, and
// semantic. Each level consumes an immutable blueprint snapshot and produces
// a fresh verdict with declaration-ordered diagnostics, so repeated runs on
// identical input yield identical output.
package level

import (
	"context"
	"time"

	"github.com/harrison/foundry/internal/models"
)

// Checker is a pluggable validation level. Implementations never mutate the
// blueprint and must be safe for concurrent use across distinct blueprints.
type Checker interface {
	// Level returns the position of this checker in the strict ordering.
	Level() models.Level

	// Name identifies the implementation in verdicts and logs.
	Name() string

	// Check validates the blueprint and returns a fresh verdict.
	Check(ctx context.Context, bp *models.BlueprintModel) models.ValidationVerdict
}

// verdict assembles a verdict for the given checker from collected diagnostics.
// Passed is true exactly when no diagnostics were found.
func verdict(c Checker, start time.Time, diags []models.Diagnostic) models.ValidationVerdict {
	return models.ValidationVerdict{
		Level:       c.Level(),
		Checker:     c.Name(),
		Passed:      len(diags) == 0,
		Diagnostics: diags,
		Duration:    time.Since(start),
	}
}
