package healing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/foundry/internal/models"
)

func leakySink() *models.BlueprintModel {
	// A sink that illegally declares an output, plus a reader of that output.
	return &models.BlueprintModel{
		Name: "leaky",
		Components: []models.Component{
			{ID: "src", Kind: models.KindSource, Outputs: []models.Port{{Name: "out", Shape: "event"}}},
			{ID: "dst", Kind: models.KindSink,
				Inputs:  []models.Port{{Name: "in", Shape: "event"}},
				Outputs: []models.Port{{Name: "echo", Shape: "event"}}},
			{ID: "tap", Kind: models.KindSink, Inputs: []models.Port{{Name: "in", Shape: "event"}}},
		},
		Connections: []models.Connection{
			{Source: models.Endpoint{Component: "src", Port: "out"},
				Sink: models.Endpoint{Component: "dst", Port: "in"}},
			{Source: models.Endpoint{Component: "dst", Port: "echo"},
				Sink: models.Endpoint{Component: "tap", Port: "in"}},
		},
	}
}

func TestStructuralRepairRemovesIllegalSinkOutput(t *testing.T) {
	bp := leakySink()
	verdict := models.ValidationVerdict{
		Level:  models.LevelComponentLogic,
		Passed: false,
		Diagnostics: []models.Diagnostic{
			{Component: "dst", Field: "outputs", Message: "sink component must not declare outputs"},
		},
	}

	revised, err := NewStructuralRepair().Heal(context.Background(), bp, verdict)
	require.NoError(t, err)

	dst, ok := revised.ComponentByID("dst")
	require.True(t, ok)
	assert.Empty(t, dst.Outputs)

	// The connection reading from the removed output goes with it.
	require.Len(t, revised.Connections, 1)
	assert.Equal(t, "src", revised.Connections[0].Source.Component)

	// Input blueprint is untouched.
	original, _ := bp.ComponentByID("dst")
	assert.Len(t, original.Outputs, 1)
	assert.Len(t, bp.Connections, 2)
}

func TestStructuralRepairRemovesIllegalSourceInput(t *testing.T) {
	bp := leakySink()
	bp.Components[0].Inputs = []models.Port{{Name: "feedback", Shape: "event"}}
	verdict := models.ValidationVerdict{
		Level:  models.LevelComponentLogic,
		Passed: false,
		Diagnostics: []models.Diagnostic{
			{Component: "src", Field: "inputs", Message: "source component must not declare inputs"},
		},
	}

	revised, err := NewStructuralRepair().Heal(context.Background(), bp, verdict)
	require.NoError(t, err)

	src, _ := revised.ComponentByID("src")
	assert.Empty(t, src.Inputs)
}

func TestStructuralRepairRefusesMissingPorts(t *testing.T) {
	bp := &models.BlueprintModel{
		Name: "gutted",
		Components: []models.Component{
			{ID: "xf", Kind: models.KindTransform},
		},
	}
	verdict := models.ValidationVerdict{
		Level:  models.LevelComponentLogic,
		Passed: false,
		Diagnostics: []models.Diagnostic{
			{Component: "xf", Field: "inputs", Message: "transform component must declare at least one input"},
		},
	}

	_, err := NewStructuralRepair().Heal(context.Background(), bp, verdict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not mechanically repairable")
}

func TestStructuralRepairRefusesComponentlessDiagnostic(t *testing.T) {
	verdict := models.ValidationVerdict{
		Level:       models.LevelComponentLogic,
		Passed:      false,
		Diagnostics: []models.Diagnostic{{Message: "vague defect"}},
	}

	_, err := NewStructuralRepair().Heal(context.Background(), leakySink(), verdict)
	assert.Error(t, err)
}
