// Package knowledge uploads extracted documents to the admin knowledge endpoint.
package knowledge

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/resilience"
)

const uploadPath = "/api/admin/knowledge/upload"

type Options struct {
	Timeout            time.Duration
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, token string) *Client {
	return NewWithOptions(baseURL, token, Options{})
}

func NewWithOptions(baseURL, token string, options Options) *Client {
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		executor:   options.ResilienceExecutor,
	}
}

// Upload makes exactly one attempt. Any 2xx status is success.
func (c *Client) Upload(ctx context.Context, record domain.UploadRecord) (domain.UploadResult, error) {
	var result domain.UploadResult
	call := func(callCtx context.Context) error {
		var err error
		result, err = c.postJSON(callCtx, uploadPath, record, "upload")
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "knowledge.upload", call, recordsBreakerFailure)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return result, wrapTemporaryIfNeeded(err)
	}
	return result, nil
}
