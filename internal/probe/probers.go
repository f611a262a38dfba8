package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/harrison/foundry/internal/models"
)

// DefaultProbeTimeout bounds a single probe attempt.
const DefaultProbeTimeout = 5 * time.Second

// CredentialProber confirms an environment credential is present and
// non-empty. Target is the environment variable name.
type CredentialProber struct{}

// Probe checks the environment for the named credential.
func (p *CredentialProber) Probe(ctx context.Context, res models.ResourceRequirement) (bool, string) {
	value, ok := os.LookupEnv(res.Target)
	if !ok {
		return false, fmt.Sprintf("credential %s is not set", res.Target)
	}
	if value == "" {
		return false, fmt.Sprintf("credential %s is set but empty", res.Target)
	}
	return true, fmt.Sprintf("credential %s present", res.Target)
}

// EndpointProber confirms a network endpoint accepts TCP connections.
// Target is a host:port address.
type EndpointProber struct {
	Timeout time.Duration
}

// Probe dials the endpoint once. Connection refused, DNS failure, and
// timeout all count as unsatisfied.
func (p *EndpointProber) Probe(ctx context.Context, res models.ResourceRequirement) (bool, string) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", res.Target)
	if err != nil {
		return false, fmt.Sprintf("endpoint %s unreachable: %v", res.Target, err)
	}
	conn.Close()
	return true, fmt.Sprintf("endpoint %s reachable", res.Target)
}

// RuntimeProber confirms a runtime binary is available on PATH.
// Target is the binary name.
type RuntimeProber struct{}

// Probe resolves the binary through PATH lookup.
func (p *RuntimeProber) Probe(ctx context.Context, res models.ResourceRequirement) (bool, string) {
	path, err := exec.LookPath(res.Target)
	if err != nil {
		return false, fmt.Sprintf("runtime %s not found on PATH", res.Target)
	}
	return true, fmt.Sprintf("runtime %s at %s", res.Target, path)
}
