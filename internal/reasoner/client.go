// Package reasoner defines the narrow interface to the external semantic
// reasoning collaborator used by the semantic validation level and the
// semantic healing strategy. The collaborator is inherently slow and
// nondeterministic, so every call carries a hard timeout and any
// schema-violating response is surfaced as an error, never a crash.
package reasoner

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/foundry/internal/models"
)

// Review is the collaborator's pass/fail judgement with its rationale.
type Review struct {
	Passed    bool   `json:"passed"`
	Rationale string `json:"rationale"`
}

// Client is the semantic collaborator contract. Check judges whether the
// blueprint's stated purpose is contradicted by what its components do;
// Repair proposes a revised blueprint addressing the given rationale.
type Client interface {
	Check(ctx context.Context, summary BlueprintSummary, purpose string) (Review, error)
	Repair(ctx context.Context, summary BlueprintSummary, rationale string) (*models.BlueprintModel, error)
}

// ComponentSummary is the condensed component view sent to the collaborator.
type ComponentSummary struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Inputs  []string `json:"inputs,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
}

// BlueprintSummary is the serialized blueprint form sent to the collaborator.
// It carries enough structure for a coherence judgement without exposing
// component configuration.
type BlueprintSummary struct {
	Name        string             `json:"name"`
	Components  []ComponentSummary `json:"components"`
	Connections []string           `json:"connections,omitempty"`
}

// Summarize condenses a blueprint into the form sent to the collaborator.
// Component and connection order follows declaration order so repeated calls
// on the same blueprint produce identical payloads.
func Summarize(bp *models.BlueprintModel) BlueprintSummary {
	summary := BlueprintSummary{Name: bp.Name}

	for _, c := range bp.Components {
		cs := ComponentSummary{ID: c.ID, Kind: string(c.Kind)}
		for _, p := range c.Inputs {
			cs.Inputs = append(cs.Inputs, fmt.Sprintf("%s:%s", p.Name, p.Shape))
		}
		for _, p := range c.Outputs {
			cs.Outputs = append(cs.Outputs, fmt.Sprintf("%s:%s", p.Name, p.Shape))
		}
		summary.Components = append(summary.Components, cs)
	}

	for _, conn := range bp.Connections {
		summary.Connections = append(summary.Connections, fmt.Sprintf("%s.%s -> %s.%s",
			conn.Source.Component, conn.Source.Port, conn.Sink.Component, conn.Sink.Port))
	}

	return summary
}

// String renders the summary as a compact text block for prompts and logs.
func (s BlueprintSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "blueprint %s\n", s.Name)
	for _, c := range s.Components {
		fmt.Fprintf(&sb, "  %s (%s) in=%v out=%v\n", c.ID, c.Kind, c.Inputs, c.Outputs)
	}
	for _, conn := range s.Connections {
		fmt.Fprintf(&sb, "  %s\n", conn)
	}
	return sb.String()
}
