// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/logger"
)

// MaxSearchResults caps every search at 50 issues regardless of how many the
// backend matches.
const MaxSearchResults = 50

// BackendError reports a non-success response from the issue tracker,
// covering auth failures, unknown issues, and malformed JQL alike. The
// backend is authoritative for query-language correctness, so JQL is never
// pre-validated locally.
type BackendError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("jira: backend returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to one Jira deployment on behalf of one caller's credentials.
//
// Clients are cheap to construct and are created per tool call so that
// credentials never leak across callers; no ambient singleton exists.
type Client struct {
	baseURL    string
	email      string
	token      string
	httpClient *http.Client
	userAgent  string
	norm       *Normalizer
}

// NewClient creates a client for the given base URL and credential pair.
//
// The base URL is normalized to carry an https scheme when none is present.
// The timeout bounds every backend call; the version string feeds the
// User-Agent header.
func NewClient(baseURL, email, token, version string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    NormalizeBaseURL(baseURL),
		email:      email,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Jira-MCP-Bridge/" + version + " (+https://github.com/H0llyW00dzZ/jira-mcp-bridge)",
		norm:       NewNormalizer(log),
	}
}

// NormalizeBaseURL prefixes bare hostnames with https:// and strips any
// trailing slash, matching how the server configuration treats JIRA_SERVER.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL != "" && !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	return baseURL
}

// Issue fetches a single issue by key and returns its normalized form.
func (c *Client) Issue(ctx context.Context, key string) (Issue, error) {
	var raw rawIssue
	endpoint := c.baseURL + "/rest/api/2/issue/" + url.PathEscape(key)
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return Issue{}, err
	}
	return c.norm.Normalize(raw), nil
}

// Search runs a JQL query and returns at most MaxSearchResults normalized
// issues in the order the backend returned them; no local re-sorting occurs.
func (c *Client) Search(ctx context.Context, jql string) ([]Issue, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("maxResults", strconv.Itoa(MaxSearchResults))

	var raw rawSearchResponse
	endpoint := c.baseURL + "/rest/api/2/search?" + query.Encode()
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	results := raw.Issues
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}

	issues := make([]Issue, 0, len(results))
	for _, r := range results {
		issues = append(issues, c.norm.Normalize(r))
	}
	return issues, nil
}

// getJSON performs an authenticated GET and decodes the JSON response body
// into out. Response bodies are read through the pooled buffers in gc to keep
// allocation pressure low under many concurrent sessions.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if c.baseURL == "" {
		return &BackendError{StatusCode: 0, Message: "no backend address configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("jira: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jira: request failed: %w", err)
	}
	defer resp.Body.Close()

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("jira: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &BackendError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(buf.Bytes())),
		}
	}

	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("jira: failed to decode response: %w", err)
	}
	return nil
}
