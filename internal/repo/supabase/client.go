// Package supabase implements the record-store backends over the managed
// PostgREST API. Every call is one independently atomic row-level operation;
// guarded writes are expressed as PATCH with an equality filter on the
// guarded column and an empty returned representation means the precondition
// no longer held.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type Config struct {
	URL        string
	ServiceKey string
}

type Client struct {
	restURL string
	key     string
	http    *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, fmt.Errorf("supabase service key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		restURL: strings.TrimRight(cfg.URL, "/") + "/rest/v1",
		key:     cfg.ServiceKey,
		http:    httpClient,
	}, nil
}

// Ping runs the cheapest possible read to verify connectivity and auth.
func (c *Client) Ping(ctx context.Context) error {
	var rows []struct {
		ID string `json:"id"`
	}
	return c.getList(ctx, "shops", "select=id&limit=1", &rows)
}

func (c *Client) getOne(ctx context.Context, table, query string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.pgrst.object+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase get %s: %w", table, err)
	}
	defer resp.Body.Close()

	// PostgREST answers 406 when the object accept header matches zero rows.
	if resp.StatusCode == http.StatusNotAcceptable || resp.StatusCode == http.StatusNotFound {
		return errNoRows
	}
	if resp.StatusCode >= 400 {
		return c.apiError(table, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s row: %w", table, err)
	}
	return nil
}

func (c *Client) getList(ctx context.Context, table, query string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, query, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase list %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(table, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

func (c *Client) insert(ctx context.Context, table string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, table, "", body)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase insert %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return errDuplicate
	}
	if resp.StatusCode >= 400 {
		return c.apiError(table, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s insert representation: %w", table, err)
	}
	return nil
}

// patch applies a filtered update and decodes the returned representation
// into out, which must be a slice pointer. Zero returned rows means the
// filter (including any guard column) matched nothing.
func (c *Client) patch(ctx context.Context, table, query string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPatch, table, query, body)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase patch %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(table, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s patch representation: %w", table, err)
	}
	return nil
}

func (c *Client) delete(ctx context.Context, table, query string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, table, query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase delete %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(table, resp)
	}
	return nil
}

// deletedCount runs a filtered delete and reports how many rows went away.
func (c *Client) deletedCount(ctx context.Context, table, query string) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, table, query, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("supabase delete %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, c.apiError(table, resp)
	}

	return parseContentRangeCount(resp.Header.Get("Content-Range")), nil
}

func (c *Client) newRequest(ctx context.Context, method, table, query string, body any) (*http.Request, error) {
	if table == "" {
		return nil, fmt.Errorf("table is required")
	}

	reqURL := c.restURL + "/" + url.PathEscape(table)
	if query != "" {
		reqURL += "?" + query
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", table, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", table, err)
	}

	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) apiError(table string, resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Message != "" {
		return &APIError{Table: table, Status: resp.StatusCode, Code: parsed.Code, Message: parsed.Message}
	}
	return &APIError{Table: table, Status: resp.StatusCode, Message: strings.TrimSpace(string(payload))}
}

type APIError struct {
	Table   string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase %s: status %d: %s", e.Table, e.Status, e.Message)
}

// parseContentRangeCount reads the total from a "0-4/5" style header value.
func parseContentRangeCount(header string) int64 {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return 0
	}
	var count int64
	if _, err := fmt.Sscanf(header[idx+1:], "%d", &count); err != nil {
		return 0
	}
	return count
}
