// Package milvus implements vectorstore.Store over the Milvus v2 REST API.
package milvus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cpl-backend/internal/vectorstore"
)

// Config carries the Milvus connection settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Client talks to /v2/vectordb/entities endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("MILVUS_URL is required")
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		cfg.Collection = "cpl_documents_v5"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Insert writes chunk records into the collection.
func (c *Client) Insert(ctx context.Context, records []vectorstore.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	payload := map[string]any{
		"collectionName": c.cfg.Collection,
		"data":           records,
	}
	var parsed apiResponse
	if err := c.post(ctx, "/v2/vectordb/entities/insert", payload, &parsed); err != nil {
		return fmt.Errorf("milvus insert: %w", err)
	}
	return nil
}

type searchHit struct {
	PK           string  `json:"pk"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	DocumentType string  `json:"document_type"`
	TargetCourse string  `json:"target_course"`
	StudentName  string  `json:"student_name"`
	NUID         string  `json:"nuid"`
	Content      string  `json:"content"`
	Distance     float64 `json:"distance"`
}

// Search runs vector similarity search and returns the topK closest chunks.
func (c *Client) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	payload := map[string]any{
		"collectionName": c.cfg.Collection,
		"data":           [][]float32{vector},
		"annsField":      "vector",
		"limit":          topK,
		"outputFields": []string{
			"pk", "document_id", "document_name", "document_type",
			"target_course", "student_name", "nuid", "content",
		},
	}
	var parsed apiResponse
	if err := c.post(ctx, "/v2/vectordb/entities/search", payload, &parsed); err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	var hits []searchHit
	if len(parsed.Data) > 0 {
		if err := json.Unmarshal(parsed.Data, &hits); err != nil {
			return nil, fmt.Errorf("milvus search: decode hits: %w", err)
		}
	}
	matches := make([]vectorstore.Match, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, vectorstore.Match(h))
	}
	return matches, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out *apiResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out.Code != 0 {
		return fmt.Errorf("code %d: %s", out.Code, out.Message)
	}
	return nil
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

var _ vectorstore.Store = (*Client)(nil)
