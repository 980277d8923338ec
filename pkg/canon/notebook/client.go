// Package notebook implements canon.KnowledgeSource over HTTP against a
// notebook-style knowledge service. The client carries an explicit
// request timeout and bounded retries with backoff; callers treat any
// returned error as "service unavailable" and fall back to offline canon
// generation.
package notebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skillforge/pkg/logger"
)

const (
	// DefaultTimeout bounds a single request to the knowledge service.
	DefaultTimeout = 30 * time.Second
	// DefaultAttempts is the retry budget per operation.
	DefaultAttempts = 3

	maxResponseBytes = 1 << 20
)

// Client talks to the notebook knowledge service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAttempts overrides the retry budget.
func WithAttempts(attempts uint) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a notebook client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("invalid notebook base URL: %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		attempts:   DefaultAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type createSessionRequest struct {
	Document string `json:"document"`
}

type createSessionResponse struct {
	ID string `json:"id"`
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

// CreateSession uploads the scope document and returns the session id.
func (c *Client) CreateSession(ctx context.Context, document string) (string, error) {
	var resp createSessionResponse
	err := c.post(ctx, "/api/v1/notebooks", createSessionRequest{Document: document}, &resp)
	if err != nil {
		return "", errors.Wrap(err, "failed to create notebook session")
	}
	if resp.ID == "" {
		return "", errors.New("knowledge service returned an empty session id")
	}
	return resp.ID, nil
}

// Query asks a question within an existing session.
func (c *Client) Query(ctx context.Context, sessionID, question string) (string, error) {
	var resp queryResponse
	path := fmt.Sprintf("/api/v1/notebooks/%s/query", url.PathEscape(sessionID))
	if err := c.post(ctx, path, queryRequest{Question: question}, &resp); err != nil {
		return "", errors.Wrap(err, "failed to query notebook session")
	}
	return resp.Answer, nil
}

// post sends a JSON request and decodes the JSON response, retrying
// transport failures and 5xx responses with backoff.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return errors.Errorf("knowledge service returned %d", resp.StatusCode)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(errors.Errorf("knowledge service rejected request with %d", resp.StatusCode))
			}

			data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, out); err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "failed to decode response"))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Debug("retrying knowledge service request")
		}),
	)
}
