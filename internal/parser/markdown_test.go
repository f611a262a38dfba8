package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/foundry/internal/models"
)

const sampleMarkdown = "# Archive pipeline\n\n" +
	"Collect events from the edge and archive them durably.\n\n" +
	"## Blueprint\n\n" +
	"```yaml\n" +
	"name: archive\n" +
	"components:\n" +
	"  - id: src\n" +
	"    kind: source\n" +
	"    outputs:\n" +
	"      - name: out\n" +
	"        shape: event\n" +
	"  - id: dst\n" +
	"    kind: sink\n" +
	"    inputs:\n" +
	"      - name: in\n" +
	"        shape: event\n" +
	"connections:\n" +
	"  - from: src.out\n" +
	"    to: dst.in\n" +
	"```\n"

func TestParseMarkdown(t *testing.T) {
	bp, err := ParseMarkdown([]byte(sampleMarkdown))
	require.NoError(t, err)

	assert.Equal(t, "archive", bp.Name)
	require.Len(t, bp.Components, 2)
	assert.Equal(t, models.KindSink, bp.Components[1].Kind)
	require.Len(t, bp.Connections, 1)
}

func TestParseMarkdownIntroBecomesPurpose(t *testing.T) {
	bp, err := ParseMarkdown([]byte(sampleMarkdown))
	require.NoError(t, err)

	assert.Equal(t, "Collect events from the edge and archive them durably.", bp.Purpose)
}

func TestParseMarkdownExplicitPurposeWins(t *testing.T) {
	doc := "Intro paragraph.\n\n" +
		"```yaml\n" +
		"name: bp\n" +
		"purpose: explicit purpose\n" +
		"```\n"

	bp, err := ParseMarkdown([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "explicit purpose", bp.Purpose)
}

func TestParseMarkdownIgnoresOtherCodeBlocks(t *testing.T) {
	doc := "Intro.\n\n" +
		"```bash\necho not a blueprint\n```\n\n" +
		"```yaml\nname: bp\n```\n"

	bp, err := ParseMarkdown([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "bp", bp.Name)
}

func TestParseMarkdownUsesFirstYamlBlock(t *testing.T) {
	doc := "```yaml\nname: first\n```\n\n```yaml\nname: second\n```\n"

	bp, err := ParseMarkdown([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "first", bp.Name)
}

func TestParseMarkdownWithoutBlueprintBlock(t *testing.T) {
	_, err := ParseMarkdown([]byte("# Just prose\n\nNothing else.\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fenced yaml blueprint block")
}

func TestParseMarkdownBadYAMLInBlock(t *testing.T) {
	_, err := ParseMarkdown([]byte("```yaml\nname: [broken\n```\n"))
	assert.Error(t, err)
}
