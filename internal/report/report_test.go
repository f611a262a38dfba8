package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/foundry/internal/models"
)

func sampleResult() *models.OrchestrationResult {
	return &models.OrchestrationResult{
		RunID:     "11111111-2222-3333-4444-555555555555",
		Blueprint: "archive",
		Status:    models.StatusFailed,
		FailedLevel: models.LevelIntegration,
		Verdicts: []models.ValidationVerdict{
			{Level: models.LevelFramework, Checker: "framework", Passed: true, Duration: time.Millisecond},
			{Level: models.LevelComponentLogic, Checker: "component-logic", Passed: true, Duration: time.Millisecond},
			{Level: models.LevelIntegration, Checker: "integration", Passed: false,
				Diagnostics: []models.Diagnostic{
					{Component: "dst", Field: "connections[0]", Message: "shape mismatch: blob -> record"},
				},
				Duration: 2 * time.Millisecond},
		},
		Healing: []models.HealingAttempt{
			{Level: models.LevelIntegration, Strategy: "config-regeneration",
				Detail: "no compatible port pair"},
		},
		Transitions: []string{"idle", "dependency-checking", "level-1", "level-2", "level-3", "failed"},
		Duration:    5 * time.Millisecond,
	}
}

func TestConsoleRenderFailure(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false).Render(sampleResult())

	out := buf.String()
	assert.Contains(t, out, "Blueprint: archive")
	assert.Contains(t, out, "FAILED at integration level")
	assert.Contains(t, out, "✓ framework")
	assert.Contains(t, out, "✗ integration")
	assert.Contains(t, out, "shape mismatch: blob -> record")
	assert.Contains(t, out, "no compatible port pair")
}

func TestConsoleRenderSuccess(t *testing.T) {
	r := sampleResult()
	r.Status = models.StatusSucceeded
	r.FailedLevel = 0
	r.Healing = nil
	for i := range r.Verdicts {
		r.Verdicts[i].Passed = true
		r.Verdicts[i].Diagnostics = nil
	}

	var buf bytes.Buffer
	NewConsole(&buf, false).Render(r)

	out := buf.String()
	assert.Contains(t, out, "SUCCEEDED")
	assert.NotContains(t, out, "✗")
	assert.NotContains(t, out, "Healing:")
}

func TestConsoleRenderDependencyUnmet(t *testing.T) {
	r := &models.OrchestrationResult{
		RunID:     "run",
		Blueprint: "archive",
		Status:    models.StatusDependencyUnmet,
		Unsatisfied: []models.UnsatisfiedResource{
			{Resource: models.ResourceRequirement{Name: "db", Kind: models.ResourceEndpoint, Target: "db:5432"},
				Detail: "connection refused"},
		},
	}

	var buf bytes.Buffer
	NewConsole(&buf, false).Render(r)

	out := buf.String()
	assert.Contains(t, out, "DEPENDENCY UNMET")
	assert.Contains(t, out, "db (endpoint): connection refused")
}

func TestConsoleRenderUnboundStrategy(t *testing.T) {
	r := sampleResult()
	r.Healing[0].Strategy = ""
	r.Healing[0].Detail = ""

	var buf bytes.Buffer
	NewConsole(&buf, false).Render(r)

	out := buf.String()
	assert.Contains(t, out, "(no strategy bound)")
	assert.Contains(t, out, "failed")
}

func TestRenderTransitions(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false).RenderTransitions(sampleResult())

	assert.Contains(t, buf.String(), "idle → dependency-checking → level-1")
}

func TestJSONRoundTrip(t *testing.T) {
	r := sampleResult()

	data, err := MarshalResult(r)
	require.NoError(t, err)

	decoded, err := UnmarshalResult(data)
	require.NoError(t, err)

	assert.Equal(t, r.RunID, decoded.RunID)
	assert.Equal(t, r.Status, decoded.Status)
	assert.Equal(t, r.Transitions, decoded.Transitions)
	require.Len(t, decoded.Verdicts, 3)
	assert.Equal(t, r.Verdicts[2].Diagnostics, decoded.Verdicts[2].Diagnostics)
}

func TestJSONEncodingIsDeterministic(t *testing.T) {
	r := sampleResult()

	first, err := MarshalResult(r)
	require.NoError(t, err)
	second, err := MarshalResult(r)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	assert.Contains(t, buf.String(), `"run_id"`)
	assert.Contains(t, buf.String(), `"status": "FAILED"`)
}

func TestMarkdownReport(t *testing.T) {
	md := Markdown(sampleResult())

	assert.Contains(t, md, "# Validation report: archive")
	assert.Contains(t, md, "| integration | fail |")
	assert.Contains(t, md, "### integration diagnostics")
	assert.Contains(t, md, "shape mismatch: blob -> record")
	assert.Contains(t, md, "config-regeneration: no compatible port pair")
}

func TestMarkdownReportDependencyUnmet(t *testing.T) {
	r := &models.OrchestrationResult{
		Blueprint: "archive",
		Status:    models.StatusDependencyUnmet,
		Unsatisfied: []models.UnsatisfiedResource{
			{Resource: models.ResourceRequirement{Name: "db", Kind: models.ResourceEndpoint},
				Detail: "connection refused"},
		},
	}

	md := Markdown(r)
	assert.Contains(t, md, "## Unsatisfied dependencies")
	assert.Contains(t, md, "| db | endpoint | connection refused |")
}

func TestHTMLRendersTables(t *testing.T) {
	html, err := HTML(sampleResult())
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "integration")
}
