package level

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/foundry/internal/models"
	"github.com/harrison/foundry/internal/reasoner"
)

// DefaultSemanticTimeout bounds one coherence check against the collaborator.
const DefaultSemanticTimeout = 60 * time.Second

// Semantic is level 4: domain coherence. It delegates to the external
// reasoning collaborator under a hard timeout. Collaborator errors, timeouts,
// and schema violations all become failed verdicts, never faults.
type Semantic struct {
	client  reasoner.Client
	timeout time.Duration
}

// NewSemantic creates the semantic checker backed by the given collaborator.
// A non-positive timeout uses DefaultSemanticTimeout.
func NewSemantic(client reasoner.Client, timeout time.Duration) *Semantic {
	if timeout <= 0 {
		timeout = DefaultSemanticTimeout
	}
	return &Semantic{client: client, timeout: timeout}
}

// Level returns 4.
func (s *Semantic) Level() models.Level { return models.LevelSemantic }

// Name returns the checker name used in verdicts.
func (s *Semantic) Name() string { return "semantic" }

// Check asks the collaborator whether the blueprint's stated purpose is
// contradicted by what its components actually do.
func (s *Semantic) Check(ctx context.Context, bp *models.BlueprintModel) models.ValidationVerdict {
	start := time.Now()

	if bp.Purpose == "" {
		return verdict(s, start, []models.Diagnostic{{
			Field:   "purpose",
			Message: "blueprint declares no purpose statement for coherence checking",
		}})
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	review, err := s.client.Check(ctx, reasoner.Summarize(bp), bp.Purpose)
	if err != nil {
		return verdict(s, start, []models.Diagnostic{{
			Field:   "reasoner",
			Message: fmt.Sprintf("coherence check did not complete: %v", err),
		}})
	}

	if !review.Passed {
		return verdict(s, start, []models.Diagnostic{{
			Field:   "purpose",
			Message: review.Rationale,
		}})
	}

	return verdict(s, start, nil)
}
