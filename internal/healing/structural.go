package healing

import (
	"context"
	"fmt"

	"github.com/harrison/foundry/internal/models"
)

// StructuralRepair is the strategy bound to the component-logic level.
// It mechanically rewrites offending declarations: a source's illegal
// inputs and a sink's illegal outputs are removed. Missing ports cannot be
// invented, so a transform with no inputs or outputs is not repairable.
type StructuralRepair struct{}

// NewStructuralRepair creates the structural repair strategy.
func NewStructuralRepair() *StructuralRepair {
	return &StructuralRepair{}
}

// ID returns the strategy identifier.
func (s *StructuralRepair) ID() string { return "structural-repair" }

// Heal rewrites the component declarations named by the verdict's
// diagnostics on a clone of the blueprint.
func (s *StructuralRepair) Heal(ctx context.Context, bp *models.BlueprintModel, verdict models.ValidationVerdict) (*models.BlueprintModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	revised := bp.Clone()

	for _, diag := range verdict.Diagnostics {
		if diag.Component == "" {
			return nil, fmt.Errorf("diagnostic without component reference is not structurally repairable: %s", diag.Message)
		}

		idx := componentIndex(revised, diag.Component)
		if idx < 0 {
			return nil, fmt.Errorf("diagnostic references unknown component %q", diag.Component)
		}

		c := &revised.Components[idx]
		switch {
		case c.Kind == models.KindSource && diag.Field == "inputs":
			// Drop the illegal inputs and any connections feeding them.
			c.Inputs = nil
			revised.Connections = dropConnectionsInto(revised.Connections, c.ID)
		case c.Kind == models.KindSink && diag.Field == "outputs":
			// Drop the illegal outputs and any connections reading them.
			c.Outputs = nil
			revised.Connections = dropConnectionsFrom(revised.Connections, c.ID)
		default:
			// Missing ports would have to be invented; refuse rather than guess.
			return nil, fmt.Errorf("component %s: %s defect is not mechanically repairable", c.ID, diag.Field)
		}
	}

	return revised, nil
}

// componentIndex finds a component's declaration position, or -1.
func componentIndex(bp *models.BlueprintModel, id string) int {
	for i, c := range bp.Components {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// dropConnectionsInto removes connections whose sink is the given component.
func dropConnectionsInto(conns []models.Connection, id string) []models.Connection {
	var out []models.Connection
	for _, conn := range conns {
		if conn.Sink.Component != id {
			out = append(out, conn)
		}
	}
	return out
}

// dropConnectionsFrom removes connections whose source is the given component.
func dropConnectionsFrom(conns []models.Connection, id string) []models.Connection {
	var out []models.Connection
	for _, conn := range conns {
		if conn.Source.Component != id {
			out = append(out, conn)
		}
	}
	return out
}
