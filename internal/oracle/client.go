package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 64 << 10

// Client calls the evaluate route over HTTP.
type Client struct {
	url    string
	http   *http.Client
	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the evaluate route at url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Score posts the request and decodes the reply. The caller's context
// carries the deadline.
func (c *Client) Score(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("oracle: cannot encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("oracle: cannot build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("evaluate request failed", "url", c.url, "err", err)
		return Response{}, fmt.Errorf("oracle: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("oracle: cannot read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("evaluate returned an error status", "status", resp.StatusCode, "body", string(data))
		return Response{}, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	out, err := decodeResponse(data)
	if err != nil {
		c.logger.Warn("evaluate returned a malformed body", "err", err)
		return Response{}, err
	}

	c.logger.Debug("evaluated", "score", out.Score, "elapsed", time.Since(start))
	return out, nil
}

// decodeResponse requires a numeric score; the comment is optional.
func decodeResponse(data []byte) (Response, error) {
	var raw struct {
		Score   *float64 `json:"score"`
		Comment *string  `json:"comment"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Score == nil {
		return Response{}, fmt.Errorf("%w: missing score", ErrMalformed)
	}

	out := Response{Score: *raw.Score}
	if raw.Comment != nil {
		out.Comment = *raw.Comment
	}
	return out, nil
}
