package models

import (
	"fmt"
	"time"
)

// Level identifies one of the four ordered validation levels.
type Level int

// Validation levels, executed strictly in ascending order
const (
	LevelFramework      Level = 1 // Structural well-formedness, fails hard
	LevelComponentLogic Level = 2 // Per-component contracts
	LevelIntegration    Level = 3 // Cross-component contracts
	LevelSemantic       Level = 4 // Domain coherence via external reasoner
)

// String returns the human-readable level name.
func (l Level) String() string {
	switch l {
	case LevelFramework:
		return "framework"
	case LevelComponentLogic:
		return "component-logic"
	case LevelIntegration:
		return "integration"
	case LevelSemantic:
		return "semantic"
	default:
		return fmt.Sprintf("level-%d", int(l))
	}
}

// Run status constants
const (
	StatusSucceeded       = "SUCCEEDED"        // All four levels passed, finalizer invoked
	StatusFailed          = "FAILED"           // A level failed after any permitted healing
	StatusDependencyUnmet = "DEPENDENCY_UNMET" // Pre-flight probe found unsatisfied resources
)

// Diagnostic is a single structured validation finding.
type Diagnostic struct {
	Component string `json:"component,omitempty"` // Offending component ID, if applicable
	Field     string `json:"field,omitempty"`     // Offending declaration (e.g., "inputs", "connection")
	Message   string `json:"message"`
}

// String formats the diagnostic for console output.
func (d Diagnostic) String() string {
	switch {
	case d.Component != "" && d.Field != "":
		return fmt.Sprintf("component %s: %s - %s", d.Component, d.Field, d.Message)
	case d.Component != "":
		return fmt.Sprintf("component %s: %s", d.Component, d.Message)
	default:
		return d.Message
	}
}

// ValidationVerdict is the immutable outcome of running one validation level
// against one blueprint snapshot. A fresh verdict is produced per invocation.
type ValidationVerdict struct {
	Level       Level         `json:"level"`
	Checker     string        `json:"checker"` // Name of the level implementation
	Passed      bool          `json:"passed"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"` // Ordered, declaration-stable
	Duration    time.Duration `json:"duration_ns"`
}

// HealingAttempt records one bounded remediation attempt at a level.
// At most one attempt is recorded per level per run.
type HealingAttempt struct {
	Level        Level             `json:"level"`
	Strategy     string            `json:"strategy"`
	InputVerdict ValidationVerdict `json:"input_verdict"`
	Succeeded    bool              `json:"succeeded"`
	Detail       string            `json:"detail,omitempty"` // Failure detail when not succeeded
	Revised      *BlueprintModel   `json:"revised,omitempty"`
	Duration     time.Duration     `json:"duration_ns"`
}

// UnsatisfiedResource describes a declared resource the pre-flight probe
// could not confirm.
type UnsatisfiedResource struct {
	Resource ResourceRequirement `json:"resource"`
	Detail   string              `json:"detail"`
}

// OrchestrationResult is the complete, serializable record of one pipeline
// run: every verdict (pre- and post-healing), every healing attempt, the
// state transition trace, and the final status.
type OrchestrationResult struct {
	RunID       string                `json:"run_id"`
	Blueprint   string                `json:"blueprint"` // Blueprint name
	Status      string                `json:"status"`
	FailedLevel Level                 `json:"failed_level,omitempty"` // Set when Status is FAILED
	Unsatisfied []UnsatisfiedResource `json:"unsatisfied,omitempty"`  // Set when Status is DEPENDENCY_UNMET
	Verdicts    []ValidationVerdict   `json:"verdicts,omitempty"`     // In execution order
	Healing     []HealingAttempt      `json:"healing,omitempty"`
	Transitions []string              `json:"transitions"` // State machine trace
	Final       *BlueprintModel       `json:"final,omitempty"` // Blueprint handed to the finalizer on success
	StartedAt   time.Time             `json:"started_at"`
	Duration    time.Duration         `json:"duration_ns"`
}

// Succeeded reports whether the run passed all four levels.
func (r *OrchestrationResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// VerdictsAt returns the verdicts recorded for the given level, in order.
// Two verdicts at a level means a healing re-check occurred there.
func (r *OrchestrationResult) VerdictsAt(level Level) []ValidationVerdict {
	var out []ValidationVerdict
	for _, v := range r.Verdicts {
		if v.Level == level {
			out = append(out, v)
		}
	}
	return out
}

// LastVerdictAt returns the final verdict recorded for the given level
// (post-healing if a re-check occurred).
func (r *OrchestrationResult) LastVerdictAt(level Level) (ValidationVerdict, bool) {
	verdicts := r.VerdictsAt(level)
	if len(verdicts) == 0 {
		return ValidationVerdict{}, false
	}
	return verdicts[len(verdicts)-1], true
}

// Summary returns a one-line description of the outcome for logs.
func (r *OrchestrationResult) Summary() string {
	switch r.Status {
	case StatusSucceeded:
		return fmt.Sprintf("blueprint %s: succeeded (%d verdicts, %d healing attempts)",
			r.Blueprint, len(r.Verdicts), len(r.Healing))
	case StatusDependencyUnmet:
		return fmt.Sprintf("blueprint %s: dependencies unmet (%d unsatisfied)",
			r.Blueprint, len(r.Unsatisfied))
	case StatusFailed:
		return fmt.Sprintf("blueprint %s: failed at %s level", r.Blueprint, r.FailedLevel)
	default:
		return fmt.Sprintf("blueprint %s: %s", r.Blueprint, r.Status)
	}
}
