package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nutridex/backend/config"
)

// cacheTTL bounds how long a natural-nutrients response is reused. Drain runs
// repeat the same query whenever a tag stays unresolved, and the API plan is
// request-limited.
const cacheTTL = 24 * time.Hour

// StatusError is a non-success response from the nutrition API. Callers treat
// it as a hard failure for the current unit of work.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nutrition api returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the natural-nutrients and instant-search endpoints.
type Client struct {
	httpClient *http.Client
	appID      string
	appKey     string
	naturalURL string
	searchURL  string
	cache      *redis.Client // nil disables response caching
}

// NewClient builds a Client from the pipeline configuration. cache may be nil.
func NewClient(cfg *config.Config, cache *redis.Client) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.CallTimeout},
		appID:      cfg.APIAppID,
		appKey:     cfg.APIAppKey,
		naturalURL: cfg.NaturalAPIURL,
		searchURL:  cfg.SearchAPIURL,
		cache:      cache,
	}
}

// NaturalNutrients resolves a free-text query into zero or more detailed food
// objects. A cached response is returned when available.
func (c *Client) NaturalNutrients(ctx context.Context, query string) ([]Food, error) {
	cacheKey := fmt.Sprintf("nutrition:natural:%s", query)
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			return decodeFoods(data)
		}
	}

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.naturalURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Foods []json.RawMessage `json:"foods"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode natural-nutrients response: %w", err)
	}

	if c.cache != nil {
		if data, err := json.Marshal(envelope.Foods); err == nil {
			c.cache.Set(ctx, cacheKey, data, cacheTTL)
		}
	}

	return decodeRawFoods(envelope.Foods)
}

// InstantSearch returns the "common" tag items for a search term.
func (c *Client) InstantSearch(ctx context.Context, term string) ([]SearchItem, error) {
	u, err := url.Parse(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("query", term)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Common []json.RawMessage `json:"common"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode instant-search response: %w", err)
	}

	items := make([]SearchItem, 0, len(envelope.Common))
	for _, raw := range envelope.Common {
		var item SearchItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to decode search item: %w", err)
		}
		item.Raw = raw
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func decodeFoods(data []byte) ([]Food, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode cached foods: %w", err)
	}
	return decodeRawFoods(raws)
}

func decodeRawFoods(raws []json.RawMessage) ([]Food, error) {
	foods := make([]Food, 0, len(raws))
	for _, raw := range raws {
		var f Food
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("failed to decode food: %w", err)
		}
		f.Raw = raw
		foods = append(foods, f)
	}
	return foods, nil
}
