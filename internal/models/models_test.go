package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlueprint() *BlueprintModel {
	return &BlueprintModel{
		Name:    "ingest-pipeline",
		Purpose: "Ingest events and archive them",
		Components: []Component{
			{
				ID:      "reader",
				Kind:    KindSource,
				Outputs: []Port{{Name: "out", Shape: "event"}},
				Config:  map[string]string{"topic": "events"},
			},
			{
				ID:     "writer",
				Kind:   KindSink,
				Inputs: []Port{{Name: "in", Shape: "event"}},
			},
		},
		Connections: []Connection{
			{
				Source: Endpoint{Component: "reader", Port: "out"},
				Sink:   Endpoint{Component: "writer", Port: "in"},
			},
		},
		Resources: []ResourceRequirement{
			{Name: "broker", Kind: ResourceEndpoint, Target: "localhost:9092"},
		},
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := testBlueprint()
	clone := original.Clone()

	clone.Components[0].Config["topic"] = "changed"
	clone.Components[0].Outputs[0].Shape = "blob"
	clone.Connections[0].Sink.Port = "other"
	clone.Resources[0].Target = "elsewhere:1"

	assert.Equal(t, "events", original.Components[0].Config["topic"])
	assert.Equal(t, "event", original.Components[0].Outputs[0].Shape)
	assert.Equal(t, "in", original.Connections[0].Sink.Port)
	assert.Equal(t, "localhost:9092", original.Resources[0].Target)
}

func TestCloneNil(t *testing.T) {
	var b *BlueprintModel
	assert.Nil(t, b.Clone())
}

func TestWithComponentsLeavesReceiverUntouched(t *testing.T) {
	original := testBlueprint()

	input := []Component{
		{ID: "solo", Kind: KindSource, Outputs: []Port{{Name: "out", Shape: "event"}}},
	}
	replaced := original.WithComponents(input)

	require.Len(t, replaced.Components, 1)
	assert.Equal(t, "solo", replaced.Components[0].ID)
	assert.Equal(t, original.Name, replaced.Name)
	assert.Len(t, original.Components, 2)

	// The replacement list is copied, not aliased.
	replaced.Components[0].Outputs[0].Shape = "blob"
	assert.Equal(t, "event", input[0].Outputs[0].Shape)
}

func TestWithConnectionsLeavesReceiverUntouched(t *testing.T) {
	original := testBlueprint()

	replaced := original.WithConnections(nil)

	assert.Empty(t, replaced.Connections)
	assert.Len(t, original.Connections, 1)
	assert.Equal(t, original.Components, replaced.Components)
}

func TestComponentByID(t *testing.T) {
	bp := testBlueprint()

	c, ok := bp.ComponentByID("reader")
	require.True(t, ok)
	assert.Equal(t, KindSource, c.Kind)

	_, ok = bp.ComponentByID("missing")
	assert.False(t, ok)
}

func TestConnectionsFor(t *testing.T) {
	bp := testBlueprint()

	assert.Len(t, bp.ConnectionsFor("reader"), 1)
	assert.Len(t, bp.ConnectionsFor("writer"), 1)
	assert.Empty(t, bp.ConnectionsFor("missing"))
}

func TestPortLookup(t *testing.T) {
	bp := testBlueprint()
	reader, _ := bp.ComponentByID("reader")

	p, ok := reader.OutputNamed("out")
	require.True(t, ok)
	assert.Equal(t, "event", p.Shape)

	_, ok = reader.InputNamed("out")
	assert.False(t, ok)
}

func TestComponentKindRecognized(t *testing.T) {
	assert.True(t, KindSource.Recognized())
	assert.True(t, KindSink.Recognized())
	assert.True(t, KindTransform.Recognized())
	assert.False(t, ComponentKind("router").Recognized())
	assert.False(t, ComponentKind("").Recognized())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "framework", LevelFramework.String())
	assert.Equal(t, "component-logic", LevelComponentLogic.String())
	assert.Equal(t, "integration", LevelIntegration.String())
	assert.Equal(t, "semantic", LevelSemantic.String())
	assert.Equal(t, "level-7", Level(7).String())
}

func TestVerdictsAt(t *testing.T) {
	result := &OrchestrationResult{
		Verdicts: []ValidationVerdict{
			{Level: LevelFramework, Passed: true},
			{Level: LevelComponentLogic, Passed: false},
			{Level: LevelComponentLogic, Passed: true},
		},
	}

	assert.Len(t, result.VerdictsAt(LevelComponentLogic), 2)

	last, ok := result.LastVerdictAt(LevelComponentLogic)
	require.True(t, ok)
	assert.True(t, last.Passed)

	_, ok = result.LastVerdictAt(LevelSemantic)
	assert.False(t, ok)
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Component: "writer", Field: "outputs", Message: "sink declares outputs"}
	assert.Equal(t, "component writer: outputs - sink declares outputs", d.String())

	d = Diagnostic{Component: "writer", Message: "orphaned"}
	assert.Equal(t, "component writer: orphaned", d.String())

	d = Diagnostic{Message: "purpose contradicted"}
	assert.Equal(t, "purpose contradicted", d.String())
}

func TestResultSerializationRoundTrip(t *testing.T) {
	result := &OrchestrationResult{
		RunID:     "run-1",
		Blueprint: "ingest-pipeline",
		Status:    StatusFailed,
		FailedLevel: LevelIntegration,
		Verdicts: []ValidationVerdict{
			{Level: LevelFramework, Checker: "framework", Passed: true},
			{Level: LevelIntegration, Checker: "integration", Passed: false,
				Diagnostics: []Diagnostic{{Component: "writer", Message: "orphaned component"}}},
		},
		Transitions: []string{"idle", "dependency-checking", "level-1", "level-3", "failed"},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded OrchestrationResult
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, result.Status, decoded.Status)
	assert.Equal(t, result.FailedLevel, decoded.FailedLevel)
	assert.Equal(t, result.Transitions, decoded.Transitions)
	require.Len(t, decoded.Verdicts, 2)
	assert.Equal(t, "orphaned component", decoded.Verdicts[1].Diagnostics[0].Message)
}

func TestSummary(t *testing.T) {
	r := &OrchestrationResult{Blueprint: "bp", Status: StatusSucceeded}
	assert.Contains(t, r.Summary(), "succeeded")

	r = &OrchestrationResult{Blueprint: "bp", Status: StatusFailed, FailedLevel: LevelSemantic}
	assert.Contains(t, r.Summary(), "semantic")

	r = &OrchestrationResult{Blueprint: "bp", Status: StatusDependencyUnmet,
		Unsatisfied: []UnsatisfiedResource{{Detail: "no such host"}}}
	assert.Contains(t, r.Summary(), "unmet")
}
