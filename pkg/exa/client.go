package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the Exa API root. Declared as a var so tests can
// substitute an httptest server.
var DefaultBaseURL = "https://api.exa.ai"

const researchModel = "exa-research"

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   RetryPolicy
}

var _ Provider = &Client{}

func NewClient(apiKey string, retry RetryPolicy) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		retry: retry,
	}
}

// WithRetryPolicy returns a shallow copy using a different poll policy.
// The sync action variant uses this to stay inside its request window.
func (c *Client) WithRetryPolicy(retry RetryPolicy) *Client {
	copied := *c
	copied.retry = retry
	return &copied
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Search runs one synchronous full-text search.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	var resp searchResponse
	if err := c.post(ctx, "/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

type createResearchRequest struct {
	Instructions string `json:"instructions"`
	Model        string `json:"model"`
}

type createResearchResponse struct {
	ResearchId string `json:"researchId"`
	Status     string `json:"status"`
}

// CreateResearchTask submits a long-running research request and returns
// its task id.
func (c *Client) CreateResearchTask(ctx context.Context, instructions string) (string, error) {
	req := createResearchRequest{Instructions: instructions, Model: researchModel}
	var resp createResearchResponse
	if err := c.post(ctx, "/research/v1", req, &resp); err != nil {
		return "", err
	}
	if resp.ResearchId == "" {
		return "", fmt.Errorf("exa research: empty researchId in create response")
	}
	return resp.ResearchId, nil
}

// GetResearchTask fetches the current status of a research task.
func (c *Client) GetResearchTask(ctx context.Context, id string) (*ResearchTask, error) {
	var task ResearchTask
	if err := c.get(ctx, "/research/v1/"+id, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("exa request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("exa api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
