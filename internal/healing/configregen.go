package healing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harrison/foundry/internal/models"
)

// ConfigRegeneration is the strategy bound to the integration level. It
// re-derives connection configuration without touching component logic:
// shape-incompatible connections are rewired to a compatible port pair
// between the same two components, and orphaned components are connected to
// the first compatible counterpart in declaration order. Defects that would
// require editing component declarations are refused.
type ConfigRegeneration struct{}

// NewConfigRegeneration creates the configuration regeneration strategy.
func NewConfigRegeneration() *ConfigRegeneration {
	return &ConfigRegeneration{}
}

// ID returns the strategy identifier.
func (c *ConfigRegeneration) ID() string { return "config-regeneration" }

// Heal re-derives the connection list on a clone of the blueprint.
func (c *ConfigRegeneration) Heal(ctx context.Context, bp *models.BlueprintModel, verdict models.ValidationVerdict) (*models.BlueprintModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	revised := bp.Clone()

	for _, diag := range verdict.Diagnostics {
		switch {
		case strings.HasPrefix(diag.Field, "connections["):
			index, err := connectionIndex(diag.Field)
			if err != nil {
				return nil, err
			}
			if err := rewireConnection(revised, index); err != nil {
				return nil, err
			}
		case diag.Field == "connections" && diag.Component != "":
			if err := connectOrphan(revised, diag.Component); err != nil {
				return nil, err
			}
		default:
			// Resource bindings and anything else would require new
			// declarations, which is outside connection regeneration.
			return nil, fmt.Errorf("finding %q cannot be repaired by configuration regeneration", diag.String())
		}
	}

	return revised, nil
}

// connectionIndex extracts N from a "connections[N]" field reference.
func connectionIndex(field string) (int, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(field, "connections["), "]")
	index, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("malformed connection reference %q", field)
	}
	return index, nil
}

// rewireConnection replaces the ports of connection index with the first
// shape-compatible output/input pair between the same two components.
func rewireConnection(bp *models.BlueprintModel, index int) error {
	if index < 0 || index >= len(bp.Connections) {
		return fmt.Errorf("connection index %d out of range", index)
	}

	conn := bp.Connections[index]
	src, ok := bp.ComponentByID(conn.Source.Component)
	if !ok {
		return fmt.Errorf("connection %d references unknown component %q", index, conn.Source.Component)
	}
	dst, ok := bp.ComponentByID(conn.Sink.Component)
	if !ok {
		return fmt.Errorf("connection %d references unknown component %q", index, conn.Sink.Component)
	}

	for _, out := range src.Outputs {
		for _, in := range dst.Inputs {
			if out.Shape == in.Shape {
				bp.Connections[index].Source.Port = out.Name
				bp.Connections[index].Sink.Port = in.Name
				return nil
			}
		}
	}

	return fmt.Errorf("components %s and %s share no compatible port pair", src.ID, dst.ID)
}

// connectOrphan attaches the orphaned component to the first compatible
// counterpart in declaration order, producing data flow in whichever
// direction the orphan's ports allow.
func connectOrphan(bp *models.BlueprintModel, id string) error {
	orphan, ok := bp.ComponentByID(id)
	if !ok {
		return fmt.Errorf("orphaned component %q not found", id)
	}

	for _, other := range bp.Components {
		if other.ID == orphan.ID {
			continue
		}

		// Orphan produces: wire its output into the other component.
		for _, out := range orphan.Outputs {
			for _, in := range other.Inputs {
				if out.Shape == in.Shape {
					bp.Connections = append(bp.Connections, models.Connection{
						Source: models.Endpoint{Component: orphan.ID, Port: out.Name},
						Sink:   models.Endpoint{Component: other.ID, Port: in.Name},
					})
					return nil
				}
			}
		}

		// Orphan consumes: wire the other component's output into it.
		for _, out := range other.Outputs {
			for _, in := range orphan.Inputs {
				if out.Shape == in.Shape {
					bp.Connections = append(bp.Connections, models.Connection{
						Source: models.Endpoint{Component: other.ID, Port: out.Name},
						Sink:   models.Endpoint{Component: orphan.ID, Port: in.Name},
					})
					return nil
				}
			}
		}
	}

	return fmt.Errorf("no compatible counterpart found for orphaned component %s", id)
}
