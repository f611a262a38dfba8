package level

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harrison/foundry/internal/models"
)

// ResourceRefPrefix marks a component config value that references a
// declared external resource by name (e.g., "res://event-broker").
const ResourceRefPrefix = "res://"

// Integration is level 3: cross-component contract checks. Connected ports
// must have compatible shapes, no component may be orphaned from the
// connection graph, and every resource reference in component configuration
// must resolve to a declared requirement.
type Integration struct{}

// NewIntegration creates the integration checker.
func NewIntegration() *Integration {
	return &Integration{}
}

// Level returns 3.
func (g *Integration) Level() models.Level { return models.LevelIntegration }

// Name returns the checker name used in verdicts.
func (g *Integration) Name() string { return "integration" }

// Check validates cross-component contracts. Diagnostics follow declaration
// order: connections first, then components, then resource references.
func (g *Integration) Check(ctx context.Context, bp *models.BlueprintModel) models.ValidationVerdict {
	start := time.Now()
	var diags []models.Diagnostic

	diags = append(diags, checkShapeCompatibility(bp)...)
	diags = append(diags, checkOrphans(bp)...)
	diags = append(diags, checkResourceRefs(bp)...)

	return verdict(g, start, diags)
}

// checkShapeCompatibility verifies that each connection joins ports with the
// same declared shape. Endpoints that do not resolve are level-1 territory
// and are skipped here.
func checkShapeCompatibility(bp *models.BlueprintModel) []models.Diagnostic {
	var diags []models.Diagnostic

	for i, conn := range bp.Connections {
		src, ok := bp.ComponentByID(conn.Source.Component)
		if !ok {
			continue
		}
		out, ok := src.OutputNamed(conn.Source.Port)
		if !ok {
			continue
		}

		dst, ok := bp.ComponentByID(conn.Sink.Component)
		if !ok {
			continue
		}
		in, ok := dst.InputNamed(conn.Sink.Port)
		if !ok {
			continue
		}

		if out.Shape != in.Shape {
			diags = append(diags, models.Diagnostic{
				Field: fmt.Sprintf("connections[%d]", i),
				Message: fmt.Sprintf("incompatible shapes: %s.%s produces %q but %s.%s expects %q",
					conn.Source.Component, conn.Source.Port, out.Shape,
					conn.Sink.Component, conn.Sink.Port, in.Shape),
			})
		}
	}

	return diags
}

// checkOrphans reports components untouched by any connection. A blueprint
// with a single component has nothing to connect and is exempt.
func checkOrphans(bp *models.BlueprintModel) []models.Diagnostic {
	if len(bp.Components) <= 1 {
		return nil
	}

	connected := make(map[string]bool)
	for _, conn := range bp.Connections {
		connected[conn.Source.Component] = true
		connected[conn.Sink.Component] = true
	}

	var diags []models.Diagnostic
	for _, c := range bp.Components {
		if !connected[c.ID] {
			diags = append(diags, models.Diagnostic{
				Component: c.ID,
				Field:     "connections",
				Message:   "component is orphaned: no connection references it",
			})
		}
	}
	return diags
}

// checkResourceRefs verifies that every res:// reference in component
// configuration names a declared resource requirement.
func checkResourceRefs(bp *models.BlueprintModel) []models.Diagnostic {
	declared := make(map[string]bool, len(bp.Resources))
	for _, r := range bp.Resources {
		declared[r.Name] = true
	}

	var diags []models.Diagnostic
	for _, c := range bp.Components {
		for _, key := range sortedConfigKeys(c.Config) {
			value := c.Config[key]
			if !strings.HasPrefix(value, ResourceRefPrefix) {
				continue
			}
			name := strings.TrimPrefix(value, ResourceRefPrefix)
			if !declared[name] {
				diags = append(diags, models.Diagnostic{
					Component: c.ID,
					Field:     "config." + key,
					Message:   fmt.Sprintf("references undeclared resource %q", name),
				})
			}
		}
	}
	return diags
}

// sortedConfigKeys returns map keys in stable order so diagnostics are
// reproducible across runs.
func sortedConfigKeys(config map[string]string) []string {
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
