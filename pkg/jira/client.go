package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Issue struct {
	Id  string `json:"id"`
	Key string `json:"key"`
}

type IssueDetails struct {
	Key     string
	Summary string
	Labels  []string
}

// API is the issue-tracking surface used for lead tracking issues and for
// linking finished research pages back to an issue.
type API interface {
	CreateIssue(ctx context.Context, projectKey, summary, description string, labels []string) (*Issue, error)
	GetIssue(ctx context.Context, key string) (*IssueDetails, error)
	AddComment(ctx context.Context, key, body string) error
}

type Client struct {
	baseURL string
	email   string
	token   string
	http    *http.Client
}

var _ API = &Client{}

func NewClient(baseURL, email, token string) *Client {
	return &Client{
		baseURL: baseURL,
		email:   email,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// adfDoc builds a minimal Atlassian Document Format body holding one
// paragraph of plain text.
func adfDoc(text string) map[string]interface{} {
	return map[string]interface{}{
		"version": 1,
		"type":    "doc",
		"content": []map[string]interface{}{
			{
				"type": "paragraph",
				"content": []map[string]interface{}{
					{"type": "text", "text": text},
				},
			},
		},
	}
}

func (c *Client) CreateIssue(ctx context.Context, projectKey, summary, description string, labels []string) (*Issue, error) {
	body := map[string]interface{}{
		"fields": map[string]interface{}{
			"project":     map[string]string{"key": projectKey},
			"summary":     summary,
			"description": adfDoc(description),
			"issuetype":   map[string]string{"name": "Task"},
			"labels":      labels,
		},
	}

	var issue Issue
	if err := c.post(ctx, "/rest/api/3/issue", body, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string   `json:"summary"`
		Labels  []string `json:"labels"`
	} `json:"fields"`
}

func (c *Client) GetIssue(ctx context.Context, key string) (*IssueDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/api/3/issue/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)

	var resp issueResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &IssueDetails{
		Key:     resp.Key,
		Summary: resp.Fields.Summary,
		Labels:  resp.Fields.Labels,
	}, nil
}

func (c *Client) AddComment(ctx context.Context, key, body string) error {
	payload := map[string]interface{}{"body": adfDoc(body)}
	var out json.RawMessage
	return c.post(ctx, "/rest/api/3/issue/"+key+"/comment", payload, &out)
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
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("jira api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}
	if len(bodyBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
