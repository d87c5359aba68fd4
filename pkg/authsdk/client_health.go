package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Liveness checks if the service is alive.
func (c *Client) Liveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/livez", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// Readiness checks if the service is ready. When it is not, the per-check
// breakdown is still returned alongside an ErrorCodeUnavailable error.
func (c *Client) Readiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var health HealthResponse
	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(body, &health); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &health, nil
	case http.StatusServiceUnavailable:
		if err := json.Unmarshal(body, &health); err != nil {
			return nil, parseErrorResponse(resp, body)
		}
		return &health, &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeUnavailable,
			Description: "service not ready",
		}
	default:
		return nil, parseErrorResponse(resp, body)
	}
}
