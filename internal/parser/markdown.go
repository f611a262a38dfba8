package parser

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/foundry/internal/models"
)

// ParseMarkdown extracts a blueprint from a markdown design document. The
// blueprint itself lives in the first fenced yaml code block; if the document
// body carries an intro paragraph before that block and the blueprint omits a
// purpose, the paragraph text becomes the purpose.
func ParseMarkdown(source []byte) (*models.BlueprintModel, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var (
		yamlBlock []byte
		intro     string
	)

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if yamlBlock != nil {
				return ast.WalkContinue, nil
			}
			lang := string(node.Language(source))
			if lang == "yaml" || lang == "yml" {
				yamlBlock = blockContent(node, source)
				return ast.WalkSkipChildren, nil
			}
		case *ast.Paragraph:
			if intro == "" && yamlBlock == nil {
				intro = strings.TrimSpace(nodeText(node, source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}

	if yamlBlock == nil {
		return nil, fmt.Errorf("markdown document has no fenced yaml blueprint block")
	}

	bp, err := ParseYAML(yamlBlock)
	if err != nil {
		return nil, err
	}
	if bp.Purpose == "" {
		bp.Purpose = intro
	}
	return bp, nil
}

// blockContent concatenates the raw lines of a fenced code block.
func blockContent(node *ast.FencedCodeBlock, source []byte) []byte {
	var out []byte
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		out = append(out, segment.Value(source)...)
	}
	return out
}

// nodeText collects the plain text under a node.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}
