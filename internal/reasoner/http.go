package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/harrison/foundry/internal/models"
)

// Default limits for collaborator calls
const (
	DefaultTimeout     = 60 * time.Second
	defaultRetryMax    = 2
	maxResponseBytes   = 4 << 20 // 4MB cap on collaborator responses
	checkPath          = "/v1/check"
	repairPath         = "/v1/repair"
)

// HTTPClient talks to a semantic reasoning service over HTTP.
// Create once and reuse; safe for concurrent use.
type HTTPClient struct {
	endpoint string
	timeout  time.Duration
	client   *retryablehttp.Client
}

// NewHTTPClient creates a reasoner client for the given service endpoint.
// Transient transport failures are retried with backoff; timeout bounds each
// logical call including retries. A non-positive timeout uses DefaultTimeout.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := retryablehttp.NewClient()
	client.RetryMax = defaultRetryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil // Transport noise goes nowhere; callers log outcomes

	return &HTTPClient{
		endpoint: endpoint,
		timeout:  timeout,
		client:   client,
	}
}

// checkRequest is the wire form of a coherence check.
type checkRequest struct {
	Blueprint BlueprintSummary `json:"blueprint"`
	Purpose   string           `json:"purpose"`
}

// checkResponse is the expected wire form of a coherence verdict.
// Verdict must be "pass" or "fail"; anything else is a schema violation.
type checkResponse struct {
	Verdict   string `json:"verdict"`
	Rationale string `json:"rationale"`
}

// repairRequest is the wire form of a semantic repair request.
type repairRequest struct {
	Blueprint BlueprintSummary `json:"blueprint"`
	Rationale string           `json:"rationale"`
}

// repairResponse is the expected wire form of a repair result.
type repairResponse struct {
	Blueprint *models.BlueprintModel `json:"blueprint"`
}

// Check asks the collaborator whether the blueprint's purpose is contradicted
// by its structure. Schema violations and timeouts return errors; the caller
// converts them into failed verdicts.
func (c *HTTPClient) Check(ctx context.Context, summary BlueprintSummary, purpose string) (Review, error) {
	var resp checkResponse
	if err := c.post(ctx, checkPath, checkRequest{Blueprint: summary, Purpose: purpose}, &resp); err != nil {
		return Review{}, err
	}

	switch resp.Verdict {
	case "pass":
		return Review{Passed: true, Rationale: resp.Rationale}, nil
	case "fail":
		if resp.Rationale == "" {
			return Review{}, fmt.Errorf("reasoner response missing rationale for fail verdict")
		}
		return Review{Passed: false, Rationale: resp.Rationale}, nil
	default:
		return Review{}, fmt.Errorf("reasoner returned unrecognized verdict %q", resp.Verdict)
	}
}

// Repair asks the collaborator for a revised blueprint addressing the
// rationale from a failed check.
func (c *HTTPClient) Repair(ctx context.Context, summary BlueprintSummary, rationale string) (*models.BlueprintModel, error) {
	var resp repairResponse
	if err := c.post(ctx, repairPath, repairRequest{Blueprint: summary, Rationale: rationale}, &resp); err != nil {
		return nil, err
	}

	if resp.Blueprint == nil {
		return nil, fmt.Errorf("reasoner repair response missing blueprint")
	}
	if len(resp.Blueprint.Components) == 0 {
		return nil, fmt.Errorf("reasoner repair returned blueprint with no components")
	}

	return resp.Blueprint, nil
}

// post sends a JSON request and decodes the JSON response under the client timeout.
func (c *HTTPClient) post(ctx context.Context, path string, payload, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode reasoner request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build reasoner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("reasoner call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read reasoner response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reasoner returned status %d: %s", resp.StatusCode, truncate(data, 200))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode reasoner response: %w", err)
	}

	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
