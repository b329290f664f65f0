package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/vincentsto199-blip/Comic/internal/shared"
)

func testClient(baseURL string, proxies ...string) *Client {
	return NewClient(shared.CatalogConfig{
		APIKey:        "test-key",
		BaseURL:       baseURL,
		Proxies:       proxies,
		RatePerSecond: 100,
	})
}

func writeEnvelope(w http.ResponseWriter, results any) {
	json.NewEncoder(w).Encode(map[string]any{
		"error":   "OK",
		"results": results,
	})
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("NewClient defaults", func(t *testing.T) {
		client := NewClient(shared.CatalogConfig{APIKey: "k"})
		if client.baseURL != defaultBaseURL {
			t.Errorf("expected default base URL, got %s", client.baseURL)
		}
	})

	t.Run("Search", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search/" {
				t.Errorf("expected path /search/, got %s", r.URL.Path)
			}

			q := r.URL.Query()
			if q.Get("api_key") != "test-key" {
				t.Errorf("expected api_key test-key, got %s", q.Get("api_key"))
			}
			if q.Get("format") != "json" {
				t.Errorf("expected format json, got %s", q.Get("format"))
			}
			if q.Get("resources") != "issue" {
				t.Errorf("expected resources issue, got %s", q.Get("resources"))
			}
			if q.Get("limit") != "20" {
				t.Errorf("expected limit 20, got %s", q.Get("limit"))
			}

			writeEnvelope(w, []map[string]any{
				{
					"id":           1234,
					"name":         "The Last Stand",
					"issue_number": "7",
					"cover_date":   "2015-03-01",
					"image": map[string]any{
						"small_url": "https://example.com/small.jpg",
						"super_url": "https://example.com/super.jpg",
					},
					"volume": map[string]any{"name": "Saga"},
				},
				{
					"id":           5678,
					"issue_number": "1",
				},
			})
		}))
		defer server.Close()

		issues, err := testClient(server.URL).Search(ctx, "saga")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if len(issues) != 2 {
			t.Fatalf("expected 2 issues, got %d", len(issues))
		}

		first := issues[0]
		if first.ID != 1234 || first.Name != "The Last Stand" || first.IssueNumber != "7" {
			t.Errorf("unexpected first issue: %+v", first)
		}

		if first.Image == nil || first.Image.SuperURL != "https://example.com/super.jpg" {
			t.Errorf("unexpected image: %+v", first.Image)
		}

		if first.Volume == nil || first.Volume.Name != "Saga" {
			t.Errorf("unexpected volume: %+v", first.Volume)
		}

		second := issues[1]
		if second.Image != nil || second.Volume != nil || second.Name != "" {
			t.Errorf("expected sparse second issue, got %+v", second)
		}
	})

	t.Run("Suggest uses small limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "6" {
				t.Errorf("expected limit 6, got %s", got)
			}
			writeEnvelope(w, []map[string]any{})
		}))
		defer server.Close()

		if _, err := testClient(server.URL).Suggest(ctx, "saga"); err != nil {
			t.Fatalf("suggest failed: %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/issue/4000-1234/" {
				t.Errorf("expected path /issue/4000-1234/, got %s", r.URL.Path)
			}
			writeEnvelope(w, map[string]any{
				"id":           1234,
				"issue_number": "7",
				"volume":       map[string]any{"name": "Saga"},
			})
		}))
		defer server.Close()

		issue, err := testClient(server.URL).Get(ctx, 1234)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}

		if issue.ID != 1234 || issue.Volume == nil || issue.Volume.Name != "Saga" {
			t.Errorf("unexpected issue: %+v", issue)
		}
	})

	t.Run("Get missing issue", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, nil)
		}))
		defer server.Close()

		_, err := testClient(server.URL).Get(ctx, 9999)
		if !errors.Is(err, shared.ErrIssueNotFound) {
			t.Errorf("expected ErrIssueNotFound, got %v", err)
		}
	})

	t.Run("Envelope error surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"error":   "Invalid API Key",
				"results": []any{},
			})
		}))
		defer server.Close()

		_, err := testClient(server.URL).Search(ctx, "saga")
		if err == nil || !strings.Contains(err.Error(), "Invalid API Key") {
			t.Errorf("expected envelope error, got %v", err)
		}
	})

	t.Run("Missing API key", func(t *testing.T) {
		client := NewClient(shared.CatalogConfig{})
		if _, err := client.Search(ctx, "saga"); !errors.Is(err, shared.ErrMissingAPIKey) {
			t.Errorf("expected ErrMissingAPIKey, got %v", err)
		}
	})

	t.Run("Proxy fallback", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "blocked", http.StatusForbidden)
		}))
		defer bad.Close()

		var goodHits int
		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			goodHits++

			// The proxy receives the full target URL as its wrapped query.
			wrapped, err := url.QueryUnescape(strings.TrimPrefix(r.URL.RequestURI(), "/?url="))
			if err != nil || !strings.Contains(wrapped, "/search/") {
				t.Errorf("expected wrapped search URL, got %q", wrapped)
			}

			writeEnvelope(w, []map[string]any{{"id": 1, "issue_number": "1"}})
		}))
		defer good.Close()

		client := testClient("https://comicvine.invalid/api",
			bad.URL+"/?url=",
			good.URL+"/?url=",
		)

		issues, err := client.Search(ctx, "saga")
		if err != nil {
			t.Fatalf("search through fallback failed: %v", err)
		}

		if len(issues) != 1 {
			t.Errorf("expected 1 issue, got %d", len(issues))
		}

		if goodHits != 1 {
			t.Errorf("expected a single fallback hit, got %d", goodHits)
		}
	})

	t.Run("All proxies fail", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "blocked", http.StatusForbidden)
		}))
		defer bad.Close()

		client := testClient("https://comicvine.invalid/api", bad.URL+"/?url=")

		if _, err := client.Search(ctx, "saga"); err == nil {
			t.Error("expected error when every attempt fails")
		}
	})
}
