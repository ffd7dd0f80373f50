// Package watsonx implements embedding.Embedder against the watsonx.ai
// text embeddings API, authenticating through IBM IAM.
package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"cpl-backend/internal/embedding"
)

const (
	apiVersion = "2024-05-02"
	// The embeddings API caps inputs per request; stay under it.
	maxBatch = 100
)

// Config carries the connection settings for the embeddings client.
type Config struct {
	ServiceURL string
	APIKey     string
	ProjectID  string
	ModelID    string
	IAMTokenURL string
	// Dim is the output dimension of ModelID (768 for slate-125m).
	Dim     int
	Timeout time.Duration
}

// Client calls POST {ServiceURL}/ml/v1/text/embeddings.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     oauth2.TokenSource
}

// NewClient validates the config and constructs the client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ServiceURL) == "" {
		return nil, fmt.Errorf("WATSONX_AI_URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("WATSONX_AI_APIKEY is required")
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("WATSONX_AI_PROJECT_ID is required")
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "ibm/slate-125m-english-rtrvr-v2"
	}
	if cfg.Dim <= 0 {
		cfg.Dim = 768
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     NewIAMTokenSource(cfg.IAMTokenURL, cfg.APIKey, httpClient),
	}, nil
}

func (c *Client) Dimension() int { return c.cfg.Dim }

type embedRequest struct {
	ModelID   string   `json:"model_id"`
	ProjectID string   `json:"project_id"`
	Inputs    []string `json:"inputs"`
}

type embedResponse struct {
	Results []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"results"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// Embed returns one vector per input, batching requests to stay within the
// API's per-call input limit.
func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += maxBatch {
		end := start + maxBatch
		if end > len(inputs) {
			end = len(inputs)
		}
		vectors, err := c.embedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *Client) embedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("embedding auth: %w", err)
	}

	payload, err := json.Marshal(embedRequest{
		ModelID:   c.cfg.ModelID,
		ProjectID: c.cfg.ProjectID,
		Inputs:    inputs,
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(c.cfg.ServiceURL, "/") + "/ml/v1/text/embeddings?version=" + apiVersion
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("embedding response parse: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("embedding error: %s (%s)", parsed.Errors[0].Message, parsed.Errors[0].Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding request: status %d: %s", resp.StatusCode, truncateBody(body))
	}
	if len(parsed.Results) != len(inputs) {
		return nil, fmt.Errorf("embedding response has %d results for %d inputs", len(parsed.Results), len(inputs))
	}

	vectors := make([][]float32, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		vectors = append(vectors, r.Embedding)
	}
	return vectors, nil
}

var _ embedding.Embedder = (*Client)(nil)
