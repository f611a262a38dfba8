// Package orchestrator drives one blueprint through the generation gate:
// the pre-flight dependency probe, the four validation levels in strict
// ascending order, bounded healing on failure, and finalization. All state
// is instance-scoped: an Orchestrator carries no mutable state across runs,
// so concurrent runs on distinct blueprints are safe.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/foundry/internal/healing"
	"github.com/harrison/foundry/internal/level"
	"github.com/harrison/foundry/internal/models"
	"github.com/harrison/foundry/internal/probe"
)

// State machine transition labels recorded on every result.
const (
	StateIdle               = "idle"
	StateDependencyChecking = "dependency-checking"
	StateFinalizing         = "finalizing"
	StateSucceeded          = "succeeded"
	StateFailed             = "failed"
	StateDependencyUnmet    = "dependency-unmet"
)

// ErrOutOfOrder reports a programming defect: the configured levels do not
// form the strict sequence 1..4. It is the one failure class that is a
// fault rather than a recorded validation outcome.
var ErrOutOfOrder = errors.New("validation levels out of order")

// Finalizer materializes a validated blueprint into runnable artifacts.
// It is an external collaborator invoked exactly once, only after all four
// levels pass.
type Finalizer interface {
	Finalize(ctx context.Context, bp *models.BlueprintModel) error
}

// Logger receives progress notifications during a run. Implementations must
// be safe for concurrent use; a nil Logger disables logging.
type Logger interface {
	LogProbe(unsatisfied []models.UnsatisfiedResource)
	LogLevelStart(l models.Level, checker string)
	LogVerdict(v models.ValidationVerdict)
	LogHealing(a models.HealingAttempt)
	LogRunSummary(r *models.OrchestrationResult)
}

// Orchestrator runs the validation state machine. Construct once per
// configuration with New; Run may be called concurrently on distinct
// blueprints.
type Orchestrator struct {
	probe     *probe.Checker
	levels    []level.Checker
	healer    *healing.Coordinator
	finalizer Finalizer
	logger    Logger
}

// New wires an Orchestrator from its injected collaborators. The checkers
// must cover exactly levels 1 through 4 in ascending order; anything else is
// ErrOutOfOrder. The finalizer may be nil when the caller only wants the
// validation outcome; healer may be nil to disable healing entirely.
func New(probeChecker *probe.Checker, checkers []level.Checker, healer *healing.Coordinator, finalizer Finalizer, logger Logger) (*Orchestrator, error) {
	if probeChecker == nil {
		return nil, fmt.Errorf("dependency probe is required")
	}
	if len(checkers) != 4 {
		return nil, fmt.Errorf("%w: expected 4 levels, got %d", ErrOutOfOrder, len(checkers))
	}
	for i, c := range checkers {
		if want := models.Level(i + 1); c.Level() != want {
			return nil, fmt.Errorf("%w: position %d holds %s, want %s", ErrOutOfOrder, i, c.Level(), want)
		}
	}
	if healer == nil {
		healer = healing.NewCoordinator(nil, 0)
	}

	return &Orchestrator{
		probe:     probeChecker,
		levels:    checkers,
		healer:    healer,
		finalizer: finalizer,
		logger:    logger,
	}, nil
}

// Run executes one atomic validation run over the blueprint and returns the
// complete result. The returned error is non-nil only for faults (internal
// invariant violations, finalizer failure); every validation outcome,
// including total failure, is expressed through the result's status.
//
// A caller-imposed context deadline is honored between levels and inside the
// semantic level; an expired deadline surfaces as FailedAtLevel(current).
func (o *Orchestrator) Run(ctx context.Context, bp *models.BlueprintModel) (*models.OrchestrationResult, error) {
	if bp == nil {
		return nil, fmt.Errorf("blueprint is required")
	}

	start := time.Now()
	result := &models.OrchestrationResult{
		RunID:       uuid.NewString(),
		Blueprint:   bp.Name,
		StartedAt:   start,
		Transitions: []string{StateIdle},
	}
	defer func() {
		result.Duration = time.Since(start)
		if o.logger != nil {
			o.logger.LogRunSummary(result)
		}
	}()

	// Pre-flight gate: no validation work, and no mutating external effect,
	// before every declared dependency is confirmed.
	result.Transitions = append(result.Transitions, StateDependencyChecking)
	unsatisfied := o.probe.Run(ctx, bp)
	if o.logger != nil {
		o.logger.LogProbe(unsatisfied)
	}
	if len(unsatisfied) > 0 {
		result.Status = models.StatusDependencyUnmet
		result.Unsatisfied = unsatisfied
		result.Transitions = append(result.Transitions, StateDependencyUnmet)
		return result, nil
	}

	current := bp
	for _, checker := range o.levels {
		lvl := checker.Level()
		result.Transitions = append(result.Transitions, stateName(lvl))

		if err := ctx.Err(); err != nil {
			o.failAt(result, lvl, models.ValidationVerdict{
				Level:   lvl,
				Checker: checker.Name(),
				Diagnostics: []models.Diagnostic{
					{Message: fmt.Sprintf("run deadline exceeded before %s level: %v", lvl, err)},
				},
			})
			return result, nil
		}

		verdict := o.check(ctx, checker, current)
		result.Verdicts = append(result.Verdicts, verdict)
		if verdict.Passed {
			continue
		}

		// No binding means fail hard with zero healing attempts recorded.
		if !o.healer.Bound(lvl) {
			o.failAt(result, lvl, verdict)
			return result, nil
		}

		// One attempt, one re-check, no fallback.
		attempt := o.healer.Attempt(ctx, lvl, current, verdict)
		result.Healing = append(result.Healing, attempt)
		if o.logger != nil {
			o.logger.LogHealing(attempt)
		}
		if !attempt.Succeeded {
			o.failAt(result, lvl, verdict)
			return result, nil
		}

		recheck := o.check(ctx, checker, attempt.Revised)
		result.Verdicts = append(result.Verdicts, recheck)
		if !recheck.Passed {
			o.failAt(result, lvl, recheck)
			return result, nil
		}

		current = attempt.Revised
	}

	result.Transitions = append(result.Transitions, StateFinalizing)
	result.Status = models.StatusSucceeded
	result.Final = current
	result.Transitions = append(result.Transitions, StateSucceeded)

	if o.finalizer != nil {
		if err := o.finalizer.Finalize(ctx, current); err != nil {
			return result, fmt.Errorf("finalize blueprint %s: %w", current.Name, err)
		}
	}

	return result, nil
}

// check runs one level with logging around it.
func (o *Orchestrator) check(ctx context.Context, checker level.Checker, bp *models.BlueprintModel) models.ValidationVerdict {
	if o.logger != nil {
		o.logger.LogLevelStart(checker.Level(), checker.Name())
	}
	verdict := checker.Check(ctx, bp)
	if o.logger != nil {
		o.logger.LogVerdict(verdict)
	}
	return verdict
}

// failAt marks the result failed at the given level.
func (o *Orchestrator) failAt(result *models.OrchestrationResult, lvl models.Level, last models.ValidationVerdict) {
	result.Status = models.StatusFailed
	result.FailedLevel = lvl
	if len(result.Verdicts) == 0 || !sameVerdict(result.Verdicts[len(result.Verdicts)-1], last) {
		result.Verdicts = append(result.Verdicts, last)
	}
	result.Transitions = append(result.Transitions, StateFailed)
}

// sameVerdict reports whether two verdicts are the same recorded instance,
// distinguished by level and diagnostics identity.
func sameVerdict(a, b models.ValidationVerdict) bool {
	if a.Level != b.Level || a.Passed != b.Passed || len(a.Diagnostics) != len(b.Diagnostics) {
		return false
	}
	for i := range a.Diagnostics {
		if a.Diagnostics[i] != b.Diagnostics[i] {
			return false
		}
	}
	return true
}

// stateName labels a validation level state in the transition trace.
func stateName(l models.Level) string {
	return fmt.Sprintf("level-%d", int(l))
}
