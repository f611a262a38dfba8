// Package probe implements the pre-flight dependency gate. Before any
// validation work begins, every declared external resource requirement is
// checked against the runtime environment; a single unsatisfied requirement
// fails the whole run. Proceeding despite a missing dependency is judged
// costlier than refusing to start, so there are no defaults and no partial
// execution.
package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/foundry/internal/models"
)

// DefaultWorkers bounds concurrent resource probes. Probe cost is dominated
// by I/O, so a small fixed pool covers typical blueprints.
const DefaultWorkers = 4

// Prober checks a single resource requirement against the environment.
type Prober interface {
	Probe(ctx context.Context, res models.ResourceRequirement) (satisfied bool, detail string)
}

// Checker runs all declared requirements through kind-specific probers with
// bounded concurrency. Construct once per orchestrator; safe for concurrent
// runs on distinct blueprints.
type Checker struct {
	probers map[models.ResourceKind]Prober
	workers int
	timeout time.Duration
}

// New creates a Checker with the built-in probers registered. Non-positive
// workers fall back to DefaultWorkers; timeout bounds each individual probe.
func New(workers int, timeout time.Duration) *Checker {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Checker{
		probers: map[models.ResourceKind]Prober{
			models.ResourceCredential: &CredentialProber{},
			models.ResourceEndpoint:   &EndpointProber{Timeout: timeout},
			models.ResourceRuntime:    &RuntimeProber{},
		},
		workers: workers,
		timeout: timeout,
	}
}

// Register installs a prober for a resource kind, replacing any built-in.
// Call before the checker is shared across runs.
func (c *Checker) Register(kind models.ResourceKind, p Prober) {
	c.probers[kind] = p
}

// Run probes every declared requirement and returns the unsatisfied ones in
// declaration order. An empty result means the blueprint may proceed to
// validation.
func (c *Checker) Run(ctx context.Context, bp *models.BlueprintModel) []models.UnsatisfiedResource {
	if len(bp.Resources) == 0 {
		return nil
	}

	// Results indexed by declaration position; merged in order below.
	type outcome struct {
		satisfied bool
		detail    string
	}
	outcomes := make([]outcome, len(bp.Resources))

	semaphore := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i := range bp.Resources {
		select {
		case <-ctx.Done():
			outcomes[i] = outcome{satisfied: false, detail: "probe aborted: " + ctx.Err().Error()}
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			res := bp.Resources[idx]
			prober, ok := c.probers[res.Kind]
			if !ok {
				// Unknown kinds fail hard: substituting a default would be a
				// false negative.
				outcomes[idx] = outcome{
					satisfied: false,
					detail:    fmt.Sprintf("no prober registered for resource kind %q", res.Kind),
				}
				return
			}

			probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			satisfied, detail := prober.Probe(probeCtx, res)
			outcomes[idx] = outcome{satisfied: satisfied, detail: detail}
		}(i)
	}

	wg.Wait()

	var unsatisfied []models.UnsatisfiedResource
	for i, out := range outcomes {
		if !out.satisfied {
			unsatisfied = append(unsatisfied, models.UnsatisfiedResource{
				Resource: bp.Resources[i],
				Detail:   out.detail,
			})
		}
	}
	return unsatisfied
}
