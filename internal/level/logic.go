package level

import (
	"context"
	"sync"
	"time"

	"github.com/harrison/foundry/internal/models"
)

// DefaultLogicWorkers bounds concurrent per-component checks.
const DefaultLogicWorkers = 4

// ComponentLogic is level 2: per-component contract checks. A pure source
// declares no inputs, a pure sink declares no outputs, and a transform
// declares at least one of each. Components are independent, so checks run
// concurrently against the same immutable snapshot; diagnostics are merged
// back in component declaration order so the verdict is reproducible.
type ComponentLogic struct {
	workers int
}

// NewComponentLogic creates the component-logic checker with a bounded
// worker count. Non-positive workers fall back to DefaultLogicWorkers.
func NewComponentLogic(workers int) *ComponentLogic {
	if workers <= 0 {
		workers = DefaultLogicWorkers
	}
	return &ComponentLogic{workers: workers}
}

// Level returns 2.
func (l *ComponentLogic) Level() models.Level { return models.LevelComponentLogic }

// Name returns the checker name used in verdicts.
func (l *ComponentLogic) Name() string { return "component-logic" }

// Check validates every component's declared contract.
func (l *ComponentLogic) Check(ctx context.Context, bp *models.BlueprintModel) models.ValidationVerdict {
	start := time.Now()

	// Per-component results indexed by declaration position; the merge below
	// reads them in order regardless of goroutine completion order.
	perComponent := make([][]models.Diagnostic, len(bp.Components))

	semaphore := make(chan struct{}, l.workers)
	var wg sync.WaitGroup

	for i := range bp.Components {
		// Fail closed: an unchecked component must not contribute to a
		// passing verdict.
		if ctx.Err() != nil {
			perComponent[i] = abortedDiagnostic(ctx, bp.Components[i])
			continue
		}
		select {
		case <-ctx.Done():
			perComponent[i] = abortedDiagnostic(ctx, bp.Components[i])
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			perComponent[idx] = checkComponentContract(bp.Components[idx])
		}(i)
	}

	wg.Wait()

	var diags []models.Diagnostic
	for _, d := range perComponent {
		diags = append(diags, d...)
	}

	return verdict(l, start, diags)
}

// abortedDiagnostic marks a component whose check never ran.
func abortedDiagnostic(ctx context.Context, c models.Component) []models.Diagnostic {
	return []models.Diagnostic{{
		Component: c.ID,
		Message:   "check aborted: " + ctx.Err().Error(),
	}}
}

// checkComponentContract returns the contract violations for one component.
func checkComponentContract(c models.Component) []models.Diagnostic {
	var diags []models.Diagnostic

	switch c.Kind {
	case models.KindSource:
		if len(c.Inputs) > 0 {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "inputs",
				Message:   "source component must not declare inputs",
			})
		}
		if len(c.Outputs) == 0 {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "outputs",
				Message:   "source component must declare at least one output",
			})
		}
	case models.KindSink:
		if len(c.Outputs) > 0 {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "outputs",
				Message:   "sink component must not declare outputs",
			})
		}
		if len(c.Inputs) == 0 {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "inputs",
				Message:   "sink component must declare at least one input",
			})
		}
	case models.KindTransform:
		if len(c.Inputs) == 0 {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "inputs",
				Message:   "transform component must declare at least one input",
			})
		}
		if len(c.Outputs) == 0 {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "outputs",
				Message:   "transform component must declare at least one output",
			})
		}
	}

	return diags
}
