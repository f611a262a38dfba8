// Package healing implements bounded automatic remediation for validation
// failures. Each strategy is bound to exactly one validation level by a
// static table fixed at construction time; the orchestrator never chooses a
// strategy from diagnostic content. A strategy failure is data the
// orchestrator records, never an uncaught fault.
package healing

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/foundry/internal/models"
)

// DefaultBudget bounds a single healing attempt.
const DefaultBudget = 2 * time.Minute

// Strategy is a pluggable remediation action. Heal receives the failing
// blueprint and the verdict that condemned it, and returns a revised
// blueprint or an error. Implementations must not modify the input
// blueprint; they clone and edit the copy.
type Strategy interface {
	// ID identifies the strategy in healing attempts and logs.
	ID() string

	// Heal produces a candidate revised blueprint for the given verdict.
	Heal(ctx context.Context, bp *models.BlueprintModel, verdict models.ValidationVerdict) (*models.BlueprintModel, error)
}

// Coordinator holds the level-to-strategy binding table and turns strategy
// invocations into HealingAttempt records. Bindings are fixed at
// construction; safe for concurrent use.
type Coordinator struct {
	bindings map[models.Level]Strategy
	budget   time.Duration
}

// NewCoordinator creates a Coordinator with the given static bindings.
// A nil map means no level has healing. Non-positive budget uses DefaultBudget.
func NewCoordinator(bindings map[models.Level]Strategy, budget time.Duration) *Coordinator {
	if budget <= 0 {
		budget = DefaultBudget
	}
	table := make(map[models.Level]Strategy, len(bindings))
	for level, s := range bindings {
		if s != nil {
			table[level] = s
		}
	}
	return &Coordinator{bindings: table, budget: budget}
}

// Bound reports whether a strategy is bound to the given level. The lookup
// is pure: calling it any number of times records nothing.
func (c *Coordinator) Bound(level models.Level) bool {
	_, ok := c.bindings[level]
	return ok
}

// Attempt invokes the strategy bound to the level, once, under the time
// budget. An absent binding yields a not-succeeded attempt with no revised
// blueprint. Strategy errors and panics become failed attempts.
func (c *Coordinator) Attempt(ctx context.Context, level models.Level, bp *models.BlueprintModel, input models.ValidationVerdict) models.HealingAttempt {
	start := time.Now()

	strategy, ok := c.bindings[level]
	if !ok {
		return models.HealingAttempt{
			Level:        level,
			InputVerdict: input,
			Succeeded:    false,
			Detail:       fmt.Sprintf("no healing strategy bound to %s level", level),
			Duration:     time.Since(start),
		}
	}

	attempt := models.HealingAttempt{
		Level:        level,
		Strategy:     strategy.ID(),
		InputVerdict: input,
	}

	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	revised, err := invoke(ctx, strategy, bp, input)
	attempt.Duration = time.Since(start)

	switch {
	case err != nil:
		attempt.Detail = err.Error()
	case revised == nil:
		attempt.Detail = "strategy returned no revised blueprint"
	default:
		attempt.Succeeded = true
		attempt.Revised = revised
	}

	return attempt
}

// invoke calls the strategy and converts panics into errors so a defective
// strategy cannot take down the run.
func invoke(ctx context.Context, s Strategy, bp *models.BlueprintModel, verdict models.ValidationVerdict) (revised *models.BlueprintModel, err error) {
	defer func() {
		if r := recover(); r != nil {
			revised = nil
			err = fmt.Errorf("healing strategy %s panicked: %v", s.ID(), r)
		}
	}()

	return s.Heal(ctx, bp, verdict)
}
