package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vincentsto199-blip/Comic/internal/shared"
)

const (
	defaultBaseURL = "https://comicvine.gamespot.com/api"

	searchLimit  = 20
	suggestLimit = 6

	// issueFields restricts responses to what the application renders.
	issueFields = "id,name,issue_number,cover_date,image,volume"

	attemptTimeout = 8 * time.Second
	fallbackPasses = 2
)

// Image holds the cover thumbnails for an issue.
type Image struct {
	SmallURL string `json:"small_url"`
	SuperURL string `json:"super_url"`
}

// Volume identifies the series an issue belongs to.
type Volume struct {
	Name string `json:"name"`
}

// Issue is a Comic Vine issue record. Name, CoverDate, Image, and Volume may
// be null in API responses.
type Issue struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	IssueNumber string  `json:"issue_number"`
	CoverDate   string  `json:"cover_date"`
	Image       *Image  `json:"image"`
	Volume      *Volume `json:"volume"`
}

// Client talks to the Comic Vine API, optionally through CORS-style proxy
// prefixes that wrap the target URL.
type Client struct {
	baseURL    string
	apiKey     string
	proxies    []string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Comic Vine client from catalog configuration.
func NewClient(cfg shared.CatalogConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		proxies:    cfg.Proxies,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Search returns up to 20 issues matching query.
func (c *Client) Search(ctx context.Context, query string) ([]Issue, error) {
	return c.fetchIssues(ctx, query, searchLimit)
}

// Suggest returns up to 6 issues matching query, for typeahead use.
func (c *Client) Suggest(ctx context.Context, query string) ([]Issue, error) {
	return c.fetchIssues(ctx, query, suggestLimit)
}

// Get fetches a single issue's detail record by its numeric Comic Vine ID.
func (c *Client) Get(ctx context.Context, id int) (*Issue, error) {
	endpoint := fmt.Sprintf("/issue/4000-%d/", id)
	body, err := c.do(ctx, endpoint, url.Values{
		"field_list": {issueFields},
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Error   string `json:"error"`
		Results *Issue `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode issue response: %w", err)
	}

	if envelope.Error != "" && envelope.Error != "OK" {
		return nil, fmt.Errorf("comic vine API error: %s", envelope.Error)
	}

	if envelope.Results == nil {
		return nil, fmt.Errorf("%w: comic vine id %d", shared.ErrIssueNotFound, id)
	}

	return envelope.Results, nil
}

func (c *Client) fetchIssues(ctx context.Context, query string, limit int) ([]Issue, error) {
	body, err := c.do(ctx, "/search/", url.Values{
		"resources":  {"issue"},
		"query":      {query},
		"limit":      {fmt.Sprintf("%d", limit)},
		"field_list": {issueFields},
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Error   string  `json:"error"`
		Results []Issue `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if envelope.Error != "" && envelope.Error != "OK" {
		return nil, fmt.Errorf("comic vine API error: %s", envelope.Error)
	}

	return envelope.Results, nil
}

// do performs a rate-limited GET against endpoint and returns the response
// body, trying every proxy target across up to two passes before failing.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, shared.ErrMissingAPIKey
	}

	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	apiURL := c.baseURL + endpoint + "?" + params.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	targets := []string{apiURL}
	if len(c.proxies) > 0 {
		targets = make([]string, len(c.proxies))
		for i, proxy := range c.proxies {
			targets[i] = proxy + url.QueryEscape(apiURL)
		}
	}

	var lastErr error
	for pass := 0; pass < fallbackPasses; pass++ {
		for _, target := range targets {
			body, err := c.attempt(ctx, target)
			if err == nil {
				return body, nil
			}
			lastErr = err
		}

		if pass < fallbackPasses-1 {
			backoff := time.Duration(pass+1) * 300 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("comic vine request failed: %w", lastErr)
}

func (c *Client) attempt(ctx context.Context, target string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("comic vine API error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
