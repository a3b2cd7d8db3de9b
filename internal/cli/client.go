package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
	verbose    io.Writer
}

// NewClient creates a new API client. Requests are traced to verbose when
// it is non-nil.
func NewClient(baseURL string, verbose io.Writer) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// a payment waits for confirmation server side
			Timeout: 90 * time.Second,
		},
		verbose: verbose,
	}
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// RequestError is returned for responses with status >= 400.
// Body is kept so callers can decode richer error payloads.
type RequestError struct {
	StatusCode int
	API        APIError
	Body       []byte
}

func (e *RequestError) Error() string {
	if e.API.Code != "" {
		return e.API.String()
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, string(e.Body))
}

// Do performs an HTTP request
func (c *Client) Do(method, path string, body, result any) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.verbose != nil {
		fmt.Fprintf(c.verbose, "> %s %s\n", method, endpoint)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.verbose != nil {
		fmt.Fprintf(c.verbose, "< %d %s (request %s)\n", resp.StatusCode, http.StatusText(resp.StatusCode), resp.Header.Get("X-Request-ID"))
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		reqErr := &RequestError{StatusCode: resp.StatusCode, Body: respBody}
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			reqErr.API = errResp.Error
		}
		return reqErr
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, body, result any) error {
	return c.Do(http.MethodPost, path, body, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(path string) error {
	return c.Do(http.MethodDelete, path, nil, nil)
}

// userPath builds /api/v1/users/{id}/suffix with escaped segments
func userPath(id string, suffix ...string) string {
	parts := []string{"/api/v1/users", url.PathEscape(id)}
	for _, s := range suffix {
		parts = append(parts, url.PathEscape(s))
	}
	return strings.Join(parts, "/")
}
