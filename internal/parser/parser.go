// Package parser loads blueprint models from YAML files or markdown design
// documents carrying an embedded YAML blueprint block.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/foundry/internal/models"
)

// Format identifies a blueprint source format.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// DetectFormat infers the blueprint format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported blueprint format %q (want .yaml, .yml, or .md)", filepath.Ext(path))
	}
}

// LoadFile reads and parses a blueprint from path, dispatching on extension.
func LoadFile(path string) (*models.BlueprintModel, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blueprint: %w", err)
	}

	switch format {
	case FormatMarkdown:
		return ParseMarkdown(data)
	default:
		return ParseYAML(data)
	}
}

// yamlBlueprint mirrors the on-disk blueprint document.
type yamlBlueprint struct {
	Name       string `yaml:"name"`
	Purpose    string `yaml:"purpose"`
	Components []struct {
		ID      string            `yaml:"id"`
		Kind    string            `yaml:"kind"`
		Inputs  []yamlPort        `yaml:"inputs"`
		Outputs []yamlPort        `yaml:"outputs"`
		Config  map[string]string `yaml:"config"`
	} `yaml:"components"`
	Connections []struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	} `yaml:"connections"`
	Resources []struct {
		Name   string `yaml:"name"`
		Kind   string `yaml:"kind"`
		Target string `yaml:"target"`
	} `yaml:"resources"`
}

type yamlPort struct {
	Name  string `yaml:"name"`
	Shape string `yaml:"shape"`
}

// ParseYAML decodes a YAML blueprint document into a model. Connections use
// "component.port" endpoint notation on both sides.
func ParseYAML(data []byte) (*models.BlueprintModel, error) {
	var doc yamlBlueprint
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse blueprint yaml: %w", err)
	}
	return buildModel(&doc)
}

func buildModel(doc *yamlBlueprint) (*models.BlueprintModel, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("blueprint is missing a name")
	}

	bp := &models.BlueprintModel{
		Name:    doc.Name,
		Purpose: doc.Purpose,
	}

	for _, c := range doc.Components {
		comp := models.Component{
			ID:     c.ID,
			Kind:   models.ComponentKind(c.Kind),
			Config: c.Config,
		}
		for _, p := range c.Inputs {
			comp.Inputs = append(comp.Inputs, models.Port{Name: p.Name, Shape: p.Shape})
		}
		for _, p := range c.Outputs {
			comp.Outputs = append(comp.Outputs, models.Port{Name: p.Name, Shape: p.Shape})
		}
		bp.Components = append(bp.Components, comp)
	}

	for i, c := range doc.Connections {
		src, err := parseEndpoint(c.From)
		if err != nil {
			return nil, fmt.Errorf("connections[%d].from: %w", i, err)
		}
		dst, err := parseEndpoint(c.To)
		if err != nil {
			return nil, fmt.Errorf("connections[%d].to: %w", i, err)
		}
		bp.Connections = append(bp.Connections, models.Connection{Source: src, Sink: dst})
	}

	for _, r := range doc.Resources {
		bp.Resources = append(bp.Resources, models.ResourceRequirement{
			Name:   r.Name,
			Kind:   models.ResourceKind(r.Kind),
			Target: r.Target,
		})
	}

	return bp, nil
}

// parseEndpoint splits "component.port" notation.
func parseEndpoint(s string) (models.Endpoint, error) {
	component, port, found := strings.Cut(s, ".")
	if !found || component == "" || port == "" {
		return models.Endpoint{}, fmt.Errorf("endpoint %q must be component.port", s)
	}
	return models.Endpoint{Component: component, Port: port}, nil
}
