package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries a client-generated id so server logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// ErrNotFound is matched by any APIError with a 404 status.
var ErrNotFound = errors.New("not found")

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Method     string
	Endpoint   string
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API %s %s returned status code: %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API %s %s returned status code: %d, response: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type BaseClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

func NewBaseClient(baseURL string) *BaseClient {
	return &BaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}
}

func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// MakeRequest sends one request and returns the response body. Per-request
// headers override the client defaults. A 204 yields a nil body.
func (c *BaseClient) MakeRequest(ctx context.Context, method, endpoint string, body io.Reader, headers http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Endpoint:   endpoint,
			Detail:     errorDetail(responseBody),
			Body:       string(responseBody),
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	return responseBody, nil
}

// DoJSON encodes in (when non-nil) as the body and decodes the response into out
// (when non-nil).
func (c *BaseClient) DoJSON(ctx context.Context, method, endpoint string, in, out any, headers http.Header) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	responseBody, err := c.MakeRequest(ctx, method, endpoint, body, headers)
	if err != nil {
		return err
	}

	if out == nil || len(responseBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(responseBody))
	}
	return nil
}

// errorDetail pulls the message out of a {"detail": ...} error body. Validation
// errors carry a list, which is returned as raw JSON.
func errorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(envelope.Detail)
}
