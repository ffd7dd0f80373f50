package watsonx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestServer(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "urn:ibm:params:oauth:grant-type:apikey" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.Form.Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/ml/v1/text/embeddings", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.URL.Query().Get("version"); got != apiVersion {
			t.Errorf("version = %q", got)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ProjectID != "proj-1" {
			t.Errorf("project_id = %q", req.ProjectID)
		}
		results := make([]map[string]any, 0, len(req.Inputs))
		for range req.Inputs {
			results = append(results, map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	})
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		ServiceURL:  baseURL,
		APIKey:      "test-key",
		ProjectID:   "proj-1",
		ModelID:     "ibm/slate-125m-english-rtrvr-v2",
		IAMTokenURL: baseURL + "/identity/token",
		Dim:         3,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestEmbed(t *testing.T) {
	var tokenCalls int32
	srv := newTestServer(t, &tokenCalls)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	vectors, err := c.Embed(context.Background(), []string{"first chunk", "second chunk"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if len(vectors[0]) != 3 {
		t.Fatalf("vector dim = %d, want 3", len(vectors[0]))
	}
}

func TestEmbedReusesToken(t *testing.T) {
	var tokenCalls int32
	srv := newTestServer(t, &tokenCalls)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	for i := 0; i < 3; i++ {
		if _, err := c.Embed(context.Background(), []string{"text"}); err != nil {
			t.Fatalf("Embed #%d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Fatalf("token endpoint called %d times, want 1", n)
	}
}

func TestEmbedAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/ml/v1/text/embeddings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"code": "invalid_input", "message": "input too long"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Embed(context.Background(), []string{"text"})
	if err == nil || !strings.Contains(err.Error(), "input too long") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	vectors, err := c.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil vectors, got %v", vectors)
	}
}
