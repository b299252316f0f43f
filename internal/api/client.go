// ABOUTME: Miniflux API client for status updates and entry listing
// ABOUTME: Bounded-timeout net/http with token auth; non-2xx responses become typed errors

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AlgusDark/minisync/internal/models"
)

const userAgent = "minisync/1.0"

// StatusError reports a non-2xx response from the server.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d for %s", e.Code, e.URL)
}

// Client talks to a Miniflux server. A timeout bounds every call, transport
// errors and timeouts are plain failures to callers.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL authenticating with
// the given API token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// UpdateEntries sets the status of all given entries in one batch call.
func (c *Client) UpdateEntries(ctx context.Context, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	body, err := json.Marshal(map[string]any{
		"entry_ids": ids,
		"status":    status,
	})
	if err != nil {
		return fmt.Errorf("marshal entry update: %w", err)
	}
	return c.put(ctx, "/v1/entries", body)
}

// MarkFeedAsRead marks every entry of the feed as read on the server.
func (c *Client) MarkFeedAsRead(ctx context.Context, feedID int64) error {
	return c.put(ctx, fmt.Sprintf("/v1/feeds/%d/mark-all-as-read", feedID), nil)
}

// MarkCategoryAsRead marks every entry of the category as read on the server.
func (c *Client) MarkCategoryAsRead(ctx context.Context, categoryID int64) error {
	return c.put(ctx, fmt.Sprintf("/v1/categories/%d/mark-all-as-read", categoryID), nil)
}

// EntryFilter narrows Entries results.
type EntryFilter struct {
	Status string
	Limit  int
}

type entriesResponse struct {
	Total   int             `json:"total"`
	Entries []*models.Entry `json:"entries"`
}

// Entries lists entries from the server, newest first.
func (c *Client) Entries(ctx context.Context, filter *EntryFilter) ([]*models.Entry, error) {
	q := url.Values{}
	q.Set("order", "published_at")
	q.Set("direction", "desc")
	if filter != nil {
		if filter.Status != "" {
			q.Set("status", filter.Status)
		}
		if filter.Limit > 0 {
			q.Set("limit", strconv.Itoa(filter.Limit))
		}
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/v1/entries?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
	}

	var parsed entriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode entries response: %w", err)
	}
	return parsed.Entries, nil
}

func (c *Client) put(ctx context.Context, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := c.newRequest(ctx, http.MethodPut, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Auth-Token", c.token)
	return req, nil
}
