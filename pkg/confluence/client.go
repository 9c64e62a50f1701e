package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Space struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Page struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	WebLink string `json:"web_link"`
}

// API is the surface the consumer depends on; *Client is the real
// implementation against the Confluence Cloud REST API.
type API interface {
	ListSpaces(ctx context.Context) ([]Space, error)
	CreatePage(ctx context.Context, spaceKey, title, storageBody string) (*Page, error)
}

type Client struct {
	baseURL string // site root, e.g. https://your-site.atlassian.net
	email   string
	token   string
	http    *http.Client

	// Space lists change rarely; cache them briefly to keep the consumer
	// from hammering the list endpoint on every job.
	cache *gocache.Cache
}

var _ API = &Client{}

const spaceCacheKey = "spaces"

func NewClient(baseURL, email, token string) *Client {
	return &Client{
		baseURL: baseURL,
		email:   email,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

type spaceListResponse struct {
	Results []Space `json:"results"`
}

func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	if cached, found := c.cache.Get(spaceCacheKey); found {
		return cached.([]Space), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wiki/rest/api/space?limit=50", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)

	var resp spaceListResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	c.cache.Set(spaceCacheKey, resp.Results, gocache.DefaultExpiration)
	return resp.Results, nil
}

type createPageRequest struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Space struct {
		Key string `json:"key"`
	} `json:"space"`
	Body struct {
		Storage struct {
			Value          string `json:"value"`
			Representation string `json:"representation"`
		} `json:"storage"`
	} `json:"body"`
}

type createPageResponse struct {
	Id    string `json:"id"`
	Title string `json:"title"`
	Links struct {
		Base  string `json:"base"`
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// CreatePage creates a new page with a storage-format body and returns its
// web link.
func (c *Client) CreatePage(ctx context.Context, spaceKey, title, storageBody string) (*Page, error) {
	var body createPageRequest
	body.Type = "page"
	body.Title = title
	body.Space.Key = spaceKey
	body.Body.Storage.Value = storageBody
	body.Body.Storage.Representation = "storage"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/wiki/rest/api/content", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Content-Type", "application/json")

	var resp createPageResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return &Page{
		Id:      resp.Id,
		Title:   resp.Title,
		WebLink: resp.Links.Base + resp.Links.WebUI,
	}, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("confluence request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("confluence api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
