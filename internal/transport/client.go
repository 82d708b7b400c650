package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/unalkalkan/SceneForge/internal/apperr"
)

// Client is the uniform HTTP helper shared by every adapter. It separates
// transport failures, provider rejections and unreadable success bodies.
type Client struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Request describes one outbound call. Body is JSON-encoded when non-nil.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   any
}

// NewClient creates a client that logs under name. A nil limiter disables
// outbound rate limiting.
func NewClient(name string, timeout time.Duration, limiter *rate.Limiter) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		name:       name,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// NewLimiter builds a limiter from a requests-per-second budget. Zero or
// negative qps means unlimited.
func NewLimiter(qps float64, burst int) *rate.Limiter {
	if qps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(qps), burst)
}

// Name returns the provider name used in messages
func (c *Client) Name() string {
	return c.name
}

// Do executes req and returns the response with its body unread. Non-2xx
// responses are consumed and returned as rejections.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.Transport(c.name, err)
		}
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	log.Printf("[%s] Request: %s %s", c.name, method, req.URL)

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		log.Printf("[%s] Request failed after %v: %v", c.name, duration, err)
		return nil, apperr.Transport(c.name, err)
	}

	log.Printf("[%s] Response: %d (took %v)", c.name, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		rejection := apperr.Rejection(c.name, resp.StatusCode, rejectionMessage(raw))
		log.Printf("[%s] API error: %s", c.name, truncateForLog(string(raw), 500))
		return nil, rejection
	}

	return resp, nil
}

// JSON executes req and decodes the success body into a generic value
func (c *Client) JSON(ctx context.Context, req Request) (any, error) {
	var payload any
	if err := c.DecodeJSON(ctx, req, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DecodeJSON executes req and decodes the success body into out
func (c *Client) DecodeJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Transport(c.name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("[%s] Failed to parse response JSON: %v", c.name, err)
		return apperr.Malformed(c.name, err)
	}
	log.Printf("[%s] Response payload: %s", c.name, truncateForLog(string(raw), 300))
	return nil
}

// Bytes executes req and returns the raw success body and its content type
func (c *Client) Bytes(ctx context.Context, req Request) ([]byte, string, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperr.Transport(c.name, err)
	}
	if len(data) == 0 {
		return nil, "", apperr.Malformed(c.name, fmt.Errorf("empty body"))
	}
	log.Printf("[%s] Response payload: size=%d bytes", c.name, len(data))
	return data, resp.Header.Get("Content-Type"), nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func rejectionMessage(raw []byte) string {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return ErrorMessage(payload)
}

// truncateForLog flattens and shortens s for single-line logs
func truncateForLog(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
