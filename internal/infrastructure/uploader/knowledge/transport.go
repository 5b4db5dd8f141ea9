package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

const maxResponseBody = 4096

func (c *Client) postJSON(ctx context.Context, path string, payload any, operation string) (domain.UploadResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("knowledge %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	result := domain.UploadResult{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       result.Body,
		}
	}
	return result, nil
}
