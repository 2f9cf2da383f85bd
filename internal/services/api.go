package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// RetryAttempts bounds retries for connection-level failures and 5xx
	// responses before the failure surfaces to the caller.
	RetryAttempts = 5
	// ErrDelay is the fixed pause between retry attempts.
	ErrDelay = time.Second
	// TooManyRequestsDelay is how long to back off after an HTTP 429 before
	// retrying unconditionally.
	TooManyRequestsDelay = 5 * time.Second
	// PaginationPages caps how many pages Paginate will follow.
	PaginationPages = 20
	// SearchResultLimit is how many ranked search results the matching
	// engine considers per query.
	SearchResultLimit = 5
)

// Response is the body and metadata of a completed request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues HTTP calls with transient-error retry, rate-limit backoff,
// and pagination. Every remote call in the system goes through it.
type Client struct {
	httpClient *http.Client
	logger     *log.Logger
	sleep      func(time.Duration) // overridable in tests
}

// NewClient creates a request Client. A nil http client defaults to
// [http.DefaultClient]; a nil logger defaults to a stderr logger.
func NewClient(hc *http.Client, logger *log.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{httpClient: hc, logger: logger}
}

// wait sleeps for d or until ctx is cancelled.
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		c.sleep(d)
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// cloneRequest rebuilds req so it can be issued again on retry. Requests
// with bodies must carry GetBody (http.NewRequest sets it for the common
// body readers).
func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	attempt := req.Clone(ctx)
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		attempt.Body = body
	}
	return attempt, nil
}

// Execute issues req and applies the uniform retry policy.
//
// Connection-level failures and 5xx responses are retried up to
// [RetryAttempts] times with [ErrDelay] between attempts. HTTP 429 sleeps
// [TooManyRequestsDelay] and retries without counting against the limit,
// looping until the server stops rate limiting. A response matching
// expected is returned as-is; anything else becomes a typed [APIError]
// selected by the request's target host.
func (c *Client) Execute(ctx context.Context, req *http.Request, expected int) (*Response, error) {
	if expected == 0 {
		expected = http.StatusOK
	}

	retries := 0
	for {
		attempt, err := cloneRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(attempt)
		if err != nil {
			retries++
			if retries >= RetryAttempts {
				return nil, fmt.Errorf("request to %s failed after %d attempts: %w", req.URL.Host, retries, err)
			}
			c.logger.Warn("transport error, retrying", "url", req.URL.Redacted(), "attempt", retries, "err", err)
			if werr := c.wait(ctx, ErrDelay); werr != nil {
				return nil, werr
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			c.logger.Warn("rate limited, backing off", "url", req.URL.Redacted(), "delay", TooManyRequestsDelay)
			if werr := c.wait(ctx, TooManyRequestsDelay); werr != nil {
				return nil, werr
			}
			continue

		case resp.StatusCode == expected:
			return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil

		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			retries++
			if retries >= RetryAttempts {
				return nil, newAPIError(req.URL.Host, resp.StatusCode, expected, body)
			}
			c.logger.Warn("server error, retrying", "url", req.URL.Redacted(), "status", resp.StatusCode, "attempt", retries)
			if werr := c.wait(ctx, ErrDelay); werr != nil {
				return nil, werr
			}
			continue

		default:
			return nil, newAPIError(req.URL.Host, resp.StatusCode, expected, body)
		}
	}
}

// ExecuteJSON runs Execute and decodes the response body into result.
func (c *Client) ExecuteJSON(ctx context.Context, req *http.Request, expected int, result any) error {
	resp, err := c.Execute(ctx, req, expected)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Host, err)
	}
	return nil
}

// paginatedBody is the subset of a page payload the paginator cares about.
type paginatedBody struct {
	Items         []json.RawMessage `json:"items"`
	Next          *string           `json:"next"`
	NextPageToken *string           `json:"nextPageToken"`
}

// Paginate repeatedly executes req against the current page and merges the
// returned item lists. The next page comes from a non-null "next" absolute
// URL if present, else a non-null "nextPageToken" cursor supplied as a
// query parameter on the following call. It stops when neither is present
// or after [PaginationPages] pages, and returns the full accumulated list.
func (c *Client) Paginate(ctx context.Context, req *http.Request, expected int) ([]json.RawMessage, error) {
	var items []json.RawMessage

	pageURL := req.URL
	pageToken := ""
	for page := 0; page < PaginationPages; page++ {
		u := *pageURL
		if pageToken != "" {
			q := u.Query()
			q.Set("pageToken", pageToken)
			u.RawQuery = q.Encode()
		}

		attempt, err := http.NewRequestWithContext(ctx, req.Method, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create page request: %w", err)
		}
		attempt.Header = req.Header.Clone()

		resp, err := c.Execute(ctx, attempt, expected)
		if err != nil {
			return nil, err
		}

		var body paginatedBody
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return nil, fmt.Errorf("failed to decode page %d from %s: %w", page+1, u.Host, err)
		}
		items = append(items, body.Items...)

		switch {
		case body.Next != nil && *body.Next != "":
			next, err := url.Parse(*body.Next)
			if err != nil {
				return nil, fmt.Errorf("bad next page URL %q: %w", *body.Next, err)
			}
			pageURL = next
			pageToken = ""
		case body.NextPageToken != nil && *body.NextPageToken != "":
			pageToken = *body.NextPageToken
		default:
			return items, nil
		}
	}

	c.logger.Warn("pagination cap reached", "url", req.URL.Redacted(), "pages", PaginationPages)
	return items, nil
}

// NewJSONRequest builds a request with a JSON body and content type,
// retryable because bytes readers carry GetBody.
func NewJSONRequest(ctx context.Context, method, rawURL string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
