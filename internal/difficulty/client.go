package difficulty

import (
	"context"
	"fmt"
	"strings"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

// Client calls an HTTP difficulty estimation service.
type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

// NewClient creates a Client for the oracle at baseURL.
func NewClient(baseURL, apiKey string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}

	return &Client{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
	}
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

type estimateRequest struct {
	ContentRef string `json:"content_ref"`
}

type estimateResponse struct {
	Difficulty float64 `json:"difficulty"`
}

// Estimate implements the Oracle interface.
func (c *Client) Estimate(ctx context.Context, contentRef string) (float64, error) {
	var result estimateResponse
	if err := retry.Do(
		func() error {
			resp, err := c.httpClient.R().
				SetContext(ctx).
				SetBody(estimateRequest{ContentRef: contentRef}).
				SetResult(&result).
				Post("/v1/estimate")
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			if resp.IsError() {
				err := fmt.Errorf("response error %d: %s", resp.StatusCode(), resp.String())
				if !isRetryableStatus(resp.StatusCode()) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetryAttempts+1),
	); err != nil {
		return 0, fmt.Errorf("estimate difficulty(%s) > %w", contentRef, err)
	}

	if result.Difficulty < 0 || result.Difficulty > 1 {
		return 0, fmt.Errorf("oracle returned difficulty %f outside [0, 1]", result.Difficulty)
	}
	return result.Difficulty, nil
}

// isRetryableError determines if a transport error should trigger a retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "EOF")
}

// isRetryableStatus reports whether an HTTP status is worth retrying.
func isRetryableStatus(status int) bool {
	return status >= 500 || status == 429
}
