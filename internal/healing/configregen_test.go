package healing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/foundry/internal/models"
)

func miswired() *models.BlueprintModel {
	// src has two outputs; the connection uses the one whose shape does not
	// match the sink's input.
	return &models.BlueprintModel{
		Name: "miswired",
		Components: []models.Component{
			{ID: "src", Kind: models.KindSource, Outputs: []models.Port{
				{Name: "raw", Shape: "blob"},
				{Name: "parsed", Shape: "record"},
			}},
			{ID: "dst", Kind: models.KindSink, Inputs: []models.Port{{Name: "in", Shape: "record"}}},
		},
		Connections: []models.Connection{
			{Source: models.Endpoint{Component: "src", Port: "raw"},
				Sink: models.Endpoint{Component: "dst", Port: "in"}},
		},
	}
}

func TestConfigRegenerationRewiresShapeMismatch(t *testing.T) {
	bp := miswired()
	verdict := models.ValidationVerdict{
		Level:  models.LevelIntegration,
		Passed: false,
		Diagnostics: []models.Diagnostic{
			{Field: "connections[0]", Message: "incompatible shapes"},
		},
	}

	revised, err := NewConfigRegeneration().Heal(context.Background(), bp, verdict)
	require.NoError(t, err)

	require.Len(t, revised.Connections, 1)
	assert.Equal(t, "parsed", revised.Connections[0].Source.Port)
	assert.Equal(t, "in", revised.Connections[0].Sink.Port)

	// Component declarations are untouched.
	src, _ := revised.ComponentByID("src")
	assert.Len(t, src.Outputs, 2)

	// Input blueprint is untouched.
	assert.Equal(t, "raw", bp.Connections[0].Source.Port)
}

func TestConfigRegenerationConnectsOrphanProducer(t *testing.T) {
	bp := miswired()
	bp.Components = append(bp.Components, models.Component{
		ID: "extra", Kind: models.KindSource,
		Outputs: []models.Port{{Name: "out", Shape: "record"}},
	})
	verdict := models.ValidationVerdict{
		Level:  models.LevelIntegration,
		Passed: false,
		Diagnostics: []models.Diagnostic{
			{Component: "extra", Field: "connections", Message: "component is orphaned"},
		},
	}

	revised, err := NewConfigRegeneration().Heal(context.Background(), bp, verdict)
	require.NoError(t, err)

	require.Len(t, revised.Connections, 2)
	added := revised.Connections[1]
	assert.Equal(t, "extra", added.Source.Component)
	assert.Equal(t, "dst", added.Sink.Component)
}

func TestConfigRegenerationConnectsOrphanConsumer(t *testing.T) {
	bp := miswired()
	bp.Components = append(bp.Components, models.Component{
		ID: "audit", Kind: models.KindSink,
		Inputs: []models.Port{{Name: "in", Shape: "blob"}},
	})
	verdict := models.ValidationVerdict{
		Level:  models.LevelIntegration,
		Passed: false,
		Diagnostics: []models.Diagnostic{
			{Component: "audit", Field: "connections", Message: "component is orphaned"},
		},
	}

	revised, err := NewConfigRegeneration().Heal(context.Background(), bp, verdict)
	require.NoError(t, err)

	require.Len(t, revised.Connections, 2)
	added := revised.Connections[1]
	assert.Equal(t, "src", added.Source.Component)
	assert.Equal(t, "raw", added.Source.Port)
	assert.Equal(t, "audit", added.Sink.Component)
}

func TestConfigRegenerationFailsWithoutCompatiblePair(t *testing.T) {
	bp := miswired()
	bp.Components[1].Inputs[0].Shape = "audio"
	verdict := models.ValidationVerdict{
		Level:  models.LevelIntegration,
		Passed: false,
		Diagnostics: []models.Diagnostic{
			{Field: "connections[0]", Message: "incompatible shapes"},
		},
	}

	_, err := NewConfigRegeneration().Heal(context.Background(), bp, verdict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no compatible port pair")
}

func TestConfigRegenerationRefusesResourceFindings(t *testing.T) {
	verdict := models.ValidationVerdict{
		Level:  models.LevelIntegration,
		Passed: false,
		Diagnostics: []models.Diagnostic{
			{Component: "src", Field: "config.broker", Message: "references undeclared resource"},
		},
	}

	_, err := NewConfigRegeneration().Heal(context.Background(), miswired(), verdict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be repaired")
}

func TestConfigRegenerationRejectsMalformedFieldRef(t *testing.T) {
	verdict := models.ValidationVerdict{
		Level:       models.LevelIntegration,
		Passed:      false,
		Diagnostics: []models.Diagnostic{{Field: "connections[x]", Message: "bad"}},
	}

	_, err := NewConfigRegeneration().Heal(context.Background(), miswired(), verdict)
	assert.Error(t, err)
}
