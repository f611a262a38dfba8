package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harrison/foundry/internal/models"
)

// WriteJSON encodes the result as indented JSON. Field order follows the
// result's struct declaration, so repeated encodings of the same result are
// byte-identical.
func WriteJSON(w io.Writer, r *models.OrchestrationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// MarshalResult returns the result as an indented JSON byte slice, for
// storage in run history.
func MarshalResult(r *models.OrchestrationResult) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}

// UnmarshalResult decodes a stored result.
func UnmarshalResult(data []byte) (*models.OrchestrationResult, error) {
	var r models.OrchestrationResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &r, nil
}
