package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"classfinder/models"
)

const (
	queryPath = "/api/query"
	loginPath = "/api/login"

	// DefaultFallbackPath is where the server publishes its demo dataset.
	DefaultFallbackPath = "/static/mock_data.json"
)

// ErrUnauthorized means the server wants a login before answering queries.
var ErrUnauthorized = errors.New("login required")

// StatusError is a non-2xx response; Detail carries the server's message.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server responded with status %d", e.Code)
	}
	return fmt.Sprintf("server responded with status %d: %s", e.Code, e.Detail)
}

// APIClient talks to the availability server. Its cookie jar carries the
// session cookie from Login to later queries.
type APIClient struct {
	baseURL  *url.URL
	fallback string
	http     *http.Client
}

// NewAPIClient targets baseURL. fallback is an http(s) URL or a local file
// holding a QueryResult; empty means DefaultFallbackPath on the server.
func NewAPIClient(baseURL, fallback string, timeout time.Duration) (*APIClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		baseURL:  u,
		fallback: fallback,
		http:     &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// Query asks for week's availability; a nil week leaves the key out so the
// server picks the current week.
func (c *APIClient) Query(ctx context.Context, week *int) (*models.QueryResult, error) {
	resp, err := c.postJSON(ctx, queryPath, models.QueryRequest{Week: week})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, readDetail(resp))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Detail: readDetail(resp)}
	}
	return decodeResult(resp.Body)
}

// Login exchanges credentials for a session cookie.
func (c *APIClient) Login(ctx context.Context, creds models.Credentials) error {
	resp, err := c.postJSON(ctx, loginPath, creds)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Detail: readDetail(resp)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Fallback loads the static demo dataset.
func (c *APIClient) Fallback(ctx context.Context) (*models.QueryResult, error) {
	source := c.fallback
	if source == "" {
		source = c.endpoint(DefaultFallbackPath)
	}
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return decodeResult(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return decodeResult(resp.Body)
}

func (c *APIClient) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *APIClient) postJSON(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func decodeResult(r io.Reader) (*models.QueryResult, error) {
	var result models.QueryResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("malformed availability data: %w", err)
	}
	return &result, nil
}

// readDetail extracts {detail} from an error body, if there is one.
func readDetail(resp *http.Response) string {
	var body models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	return body.Detail
}
