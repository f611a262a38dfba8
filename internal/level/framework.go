package level

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/foundry/internal/models"
)

// Framework is level 1: structural well-formedness independent of component
// semantics. A failure here signals a platform defect, not a blueprint
// defect, so by convention no healing strategy is bound to this level.
type Framework struct{}

// NewFramework creates the framework checker.
func NewFramework() *Framework {
	return &Framework{}
}

// Level returns 1.
func (f *Framework) Level() models.Level { return models.LevelFramework }

// Name returns the checker name used in verdicts.
func (f *Framework) Name() string { return "framework" }

// Check verifies that every component has a unique non-empty ID and a
// recognized kind, and that every connection references components and ports
// that exist. Diagnostics follow declaration order: components first, then
// connections.
func (f *Framework) Check(ctx context.Context, bp *models.BlueprintModel) models.ValidationVerdict {
	start := time.Now()
	var diags []models.Diagnostic

	if len(bp.Components) == 0 {
		diags = append(diags, models.Diagnostic{
			Field:   "components",
			Message: "blueprint declares no components",
		})
		return verdict(f, start, diags)
	}

	seen := make(map[string]bool, len(bp.Components))
	for _, c := range bp.Components {
		if c.ID == "" {
			diags = append(diags, models.Diagnostic{
				Field:   "id",
				Message: "component declares an empty id",
			})
			continue
		}
		if seen[c.ID] {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "id",
				Message:   "duplicate component id",
			})
		}
		seen[c.ID] = true

		if !c.Kind.Recognized() {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "kind",
				Message:   fmt.Sprintf("unrecognized component kind %q", c.Kind),
			})
		}
	}

	for i, conn := range bp.Connections {
		diags = append(diags, checkEndpoint(bp, i, "source", conn.Source, false)...)
		diags = append(diags, checkEndpoint(bp, i, "sink", conn.Sink, true)...)
	}

	return verdict(f, start, diags)
}

// checkEndpoint verifies one end of a connection resolves to a declared
// component and port. Sinks resolve against inputs, sources against outputs.
func checkEndpoint(bp *models.BlueprintModel, index int, role string, ep models.Endpoint, isSink bool) []models.Diagnostic {
	field := fmt.Sprintf("connections[%d].%s", index, role)

	component, ok := bp.ComponentByID(ep.Component)
	if !ok {
		return []models.Diagnostic{{
			Field:   field,
			Message: fmt.Sprintf("references undeclared component %q", ep.Component),
		}}
	}

	var found bool
	if isSink {
		_, found = component.InputNamed(ep.Port)
	} else {
		_, found = component.OutputNamed(ep.Port)
	}
	if !found {
		direction := "output"
		if isSink {
			direction = "input"
		}
		return []models.Diagnostic{{
			Component: ep.Component,
			Field:     field,
			Message:   fmt.Sprintf("references undeclared %s port %q", direction, ep.Port),
		}}
	}

	return nil
}
