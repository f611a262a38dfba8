package healing

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/foundry/internal/models"
	"github.com/harrison/foundry/internal/reasoner"
)

// SemanticRepair is the strategy bound to the semantic level. It delegates
// to the same external reasoning collaborator that produced the failing
// verdict, handing it the rationale and asking for a revised blueprint.
type SemanticRepair struct {
	client reasoner.Client
}

// NewSemanticRepair creates the semantic repair strategy.
func NewSemanticRepair(client reasoner.Client) *SemanticRepair {
	return &SemanticRepair{client: client}
}

// ID returns the strategy identifier.
func (s *SemanticRepair) ID() string { return "semantic-repair" }

// Heal asks the collaborator for a revised blueprint. The revision keeps the
// original name and purpose when the collaborator omits them, so the
// re-check judges the same stated intent.
func (s *SemanticRepair) Heal(ctx context.Context, bp *models.BlueprintModel, verdict models.ValidationVerdict) (*models.BlueprintModel, error) {
	rationale := joinDiagnostics(verdict.Diagnostics)
	if rationale == "" {
		return nil, fmt.Errorf("semantic verdict carries no rationale to repair against")
	}

	revised, err := s.client.Repair(ctx, reasoner.Summarize(bp), rationale)
	if err != nil {
		return nil, fmt.Errorf("semantic repair failed: %w", err)
	}
	if revised == nil {
		return nil, fmt.Errorf("collaborator returned no revised blueprint")
	}

	if revised.Name == "" {
		revised.Name = bp.Name
	}
	if revised.Purpose == "" {
		revised.Purpose = bp.Purpose
	}
	if revised.Resources == nil {
		revised.Resources = bp.Clone().Resources
	}

	return revised, nil
}

// joinDiagnostics collapses a verdict's findings into one rationale string.
func joinDiagnostics(diags []models.Diagnostic) string {
	var parts []string
	for _, d := range diags {
		if d.Message != "" {
			parts = append(parts, d.Message)
		}
	}
	return strings.Join(parts, "; ")
}
