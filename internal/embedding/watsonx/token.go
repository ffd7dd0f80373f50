package watsonx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const defaultIAMTokenURL = "https://iam.cloud.ibm.com/identity/token"

// iamTokenSource exchanges an IBM Cloud API key for a short-lived bearer
// token. Wrap it in oauth2.ReuseTokenSource so the token is cached until
// close to expiry.
type iamTokenSource struct {
	tokenURL   string
	apiKey     string
	httpClient *http.Client
}

// NewIAMTokenSource builds a caching token source for the IBM IAM apikey grant.
func NewIAMTokenSource(tokenURL, apiKey string, httpClient *http.Client) oauth2.TokenSource {
	if strings.TrimSpace(tokenURL) == "" {
		tokenURL = defaultIAMTokenURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	src := &iamTokenSource{tokenURL: tokenURL, apiKey: apiKey, httpClient: httpClient}
	return oauth2.ReuseTokenSource(nil, src)
}

func (s *iamTokenSource) Token() (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", s.apiKey)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("iam token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("iam token request: status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("iam token parse: %w", err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("iam token response missing access_token")
	}

	tok := &oauth2.Token{
		AccessToken: parsed.AccessToken,
		TokenType:   parsed.TokenType,
	}
	if parsed.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	}
	return tok, nil
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
