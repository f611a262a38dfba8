// Package models defines the core data types shared across foundry:
// the immutable blueprint model consumed by the validation pipeline and
// the verdict/attempt/result types produced by it.
package models

// ComponentKind classifies what a component does with data.
type ComponentKind string

// Recognized component kinds
const (
	KindSource    ComponentKind = "source"    // Produces data, declares no inputs
	KindSink      ComponentKind = "sink"      // Consumes data, declares no outputs
	KindTransform ComponentKind = "transform" // Consumes and produces data
)

// Recognized returns true if the kind is one of the declared component kinds.
func (k ComponentKind) Recognized() bool {
	switch k {
	case KindSource, KindSink, KindTransform:
		return true
	default:
		return false
	}
}

// Port is a named data endpoint on a component with a declared payload shape.
type Port struct {
	Name  string `json:"name" yaml:"name"`
	Shape string `json:"shape" yaml:"shape"` // Declared payload shape (e.g., "record", "event", "blob")
}

// Component is a single declared unit of the system to be generated.
type Component struct {
	ID      string            `json:"id" yaml:"id"`
	Kind    ComponentKind     `json:"kind" yaml:"kind"`
	Inputs  []Port            `json:"inputs,omitempty" yaml:"inputs"`
	Outputs []Port            `json:"outputs,omitempty" yaml:"outputs"`
	Config  map[string]string `json:"config,omitempty" yaml:"config"`
}

// InputNamed returns the input port with the given name, if declared.
func (c Component) InputNamed(name string) (Port, bool) {
	for _, p := range c.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// OutputNamed returns the output port with the given name, if declared.
func (c Component) OutputNamed(name string) (Port, bool) {
	for _, p := range c.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Endpoint identifies one end of a connection: a component and one of its ports.
type Endpoint struct {
	Component string `json:"component" yaml:"component"`
	Port      string `json:"port" yaml:"port"`
}

// Connection wires a source component output to a sink component input.
type Connection struct {
	Source Endpoint `json:"source" yaml:"source"`
	Sink   Endpoint `json:"sink" yaml:"sink"`
}

// ResourceKind classifies a declared external resource requirement.
type ResourceKind string

// Recognized resource requirement kinds
const (
	ResourceCredential ResourceKind = "credential" // Environment credential must be present
	ResourceEndpoint   ResourceKind = "endpoint"   // Network endpoint must be reachable
	ResourceRuntime    ResourceKind = "runtime"    // Runtime binary must be on PATH
)

// ResourceRequirement declares an external capability the generated system needs.
// Target is kind-specific: an environment variable name for credentials,
// a host:port address for endpoints, a binary name for runtimes.
type ResourceRequirement struct {
	Name   string       `json:"name" yaml:"name"`
	Kind   ResourceKind `json:"kind" yaml:"kind"`
	Target string       `json:"target" yaml:"target"`
}

// BlueprintModel is the parsed, immutable representation of a system to be
// generated. Validation never mutates it; healing strategies produce a new
// value via Clone, preserving the original for auditability.
type BlueprintModel struct {
	Name        string                `json:"name" yaml:"name"`
	Purpose     string                `json:"purpose,omitempty" yaml:"purpose"`
	Components  []Component           `json:"components" yaml:"components"`
	Connections []Connection          `json:"connections,omitempty" yaml:"connections"`
	Resources   []ResourceRequirement `json:"resources,omitempty" yaml:"resources"`
}

// ComponentByID returns the component with the given ID, if declared.
func (b *BlueprintModel) ComponentByID(id string) (Component, bool) {
	for _, c := range b.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

// ConnectionsFor returns all connections that touch the given component,
// in declaration order.
func (b *BlueprintModel) ConnectionsFor(id string) []Connection {
	var conns []Connection
	for _, conn := range b.Connections {
		if conn.Source.Component == id || conn.Sink.Component == id {
			conns = append(conns, conn)
		}
	}
	return conns
}

// Clone returns a deep copy of the blueprint. Healing strategies clone
// before editing so the input blueprint is never modified in place.
func (b *BlueprintModel) Clone() *BlueprintModel {
	if b == nil {
		return nil
	}

	clone := &BlueprintModel{
		Name:    b.Name,
		Purpose: b.Purpose,
	}

	if b.Components != nil {
		clone.Components = make([]Component, len(b.Components))
		for i, c := range b.Components {
			clone.Components[i] = cloneComponent(c)
		}
	}

	if b.Connections != nil {
		clone.Connections = make([]Connection, len(b.Connections))
		copy(clone.Connections, b.Connections)
	}

	if b.Resources != nil {
		clone.Resources = make([]ResourceRequirement, len(b.Resources))
		copy(clone.Resources, b.Resources)
	}

	return clone
}

// WithComponents returns a deep copy of the blueprint with the component
// list replaced. The receiver is not modified.
func (b *BlueprintModel) WithComponents(components []Component) *BlueprintModel {
	clone := b.Clone()
	clone.Components = nil
	for _, c := range components {
		clone.Components = append(clone.Components, cloneComponent(c))
	}
	return clone
}

// WithConnections returns a deep copy of the blueprint with the connection
// list replaced. The receiver is not modified.
func (b *BlueprintModel) WithConnections(connections []Connection) *BlueprintModel {
	clone := b.Clone()
	clone.Connections = append([]Connection(nil), connections...)
	return clone
}

// cloneComponent deep-copies a component including its port slices and config map.
func cloneComponent(c Component) Component {
	out := Component{
		ID:   c.ID,
		Kind: c.Kind,
	}
	if c.Inputs != nil {
		out.Inputs = make([]Port, len(c.Inputs))
		copy(out.Inputs, c.Inputs)
	}
	if c.Outputs != nil {
		out.Outputs = make([]Port, len(c.Outputs))
		copy(out.Outputs, c.Outputs)
	}
	if c.Config != nil {
		out.Config = make(map[string]string, len(c.Config))
		for k, v := range c.Config {
			out.Config[k] = v
		}
	}
	return out
}
