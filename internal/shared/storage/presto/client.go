// Package presto implements a minimal client for the Presto statement API
// exposed by watsonx.data. A statement is submitted with a single POST; result
// pages are then fetched by following nextUri until the engine reports a
// terminal state. The poll loop is bounded so a stuck query cannot block a
// request forever.
package presto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 500 * time.Millisecond
	defaultMaxAttempts  = 60
)

// ErrPollLimit is returned when a query does not finish within the bounded
// number of result-page polls.
var ErrPollLimit = errors.New("presto: poll attempt limit reached")

// ConnectionError marks transient transport failures against the query engine.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("presto: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Config holds connection settings for the statement endpoint.
type Config struct {
	// BaseURL is the engine host, e.g. https://host:443.
	BaseURL  string
	User     string
	Password string

	Timeout      time.Duration
	PollInterval time.Duration
	MaxAttempts  int
}

// Client executes SQL statements over HTTP.
type Client struct {
	baseURL      string
	user         string
	password     string
	httpClient   *http.Client
	pollInterval time.Duration
	maxAttempts  int
}

// Result holds the column names and raw rows of a finished query.
type Result struct {
	Columns []string
	Rows    [][]any
}

// New constructs a Client with bounded polling defaults.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		user:         cfg.User,
		password:     cfg.Password,
		httpClient:   &http.Client{Timeout: timeout},
		pollInterval: interval,
		maxAttempts:  attempts,
	}
}

type statementResponse struct {
	ID      string `json:"id"`
	NextURI string `json:"nextUri"`
	Columns []struct {
		Name string `json:"name"`
	} `json:"columns"`
	Data  [][]any `json:"data"`
	Stats struct {
		State string `json:"state"`
	} `json:"stats"`
	Error *struct {
		Message   string `json:"message"`
		ErrorName string `json:"errorName"`
	} `json:"error"`
}

// Query binds args into stmt and executes it, following result pages until
// the query finishes, fails, or the poll budget is exhausted.
func (c *Client) Query(ctx context.Context, stmt string, args ...any) (*Result, error) {
	sql, err := Bind(stmt, args...)
	if err != nil {
		return nil, err
	}

	page, err := c.submit(ctx, sql)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	collect(result, page)
	if page.Error != nil {
		return nil, fmt.Errorf("presto: query failed: %s", page.Error.Message)
	}

	nextURI := page.NextURI
	for attempt := 0; nextURI != ""; attempt++ {
		if attempt >= c.maxAttempts {
			return nil, ErrPollLimit
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		page, err = c.fetch(ctx, nextURI)
		if err != nil {
			return nil, err
		}
		collect(result, page)
		if page.Error != nil {
			return nil, fmt.Errorf("presto: query failed: %s", page.Error.Message)
		}
		if page.Stats.State == "FINISHED" {
			return result, nil
		}
		nextURI = page.NextURI
	}

	return result, nil
}

// Exec runs a statement whose row output is irrelevant (INSERT, UPDATE).
func (c *Client) Exec(ctx context.Context, stmt string, args ...any) error {
	_, err := c.Query(ctx, stmt, args...)
	return err
}

func (c *Client) submit(ctx context.Context, sql string) (*statementResponse, error) {
	url := c.baseURL + "/v1/statement"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(sql))
	if err != nil {
		return nil, fmt.Errorf("presto: build request: %w", err)
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "text/plain")

	return c.do(req, "submit statement")
}

func (c *Client) fetch(ctx context.Context, uri string) (*statementResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("presto: build poll request: %w", err)
	}
	c.decorate(req)

	return c.do(req, "fetch result page")
}

func (c *Client) decorate(req *http.Request) {
	user := c.user
	if user == "" {
		user = "admin"
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	req.Header.Set("X-Presto-User", user)
}

func (c *Client) do(req *http.Request, op string) (*statementResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("presto: %s: status %d: %s", op, resp.StatusCode, truncateBody(body))
	}

	var parsed statementResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("presto: %s: decode: %w", op, err)
	}
	return &parsed, nil
}

func collect(result *Result, page *statementResponse) {
	if len(result.Columns) == 0 {
		for _, col := range page.Columns {
			result.Columns = append(result.Columns, col.Name)
		}
	}
	result.Rows = append(result.Rows, page.Data...)
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
