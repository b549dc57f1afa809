// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package github fetches repository metadata from the GitHub REST API and
// renders the box-drawn analysis report.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultAPIBase is the GitHub REST v3 endpoint.
	DefaultAPIBase = "https://api.github.com"

	// requestTimeout bounds each individual API call.
	requestTimeout = 30 * time.Second

	// maxBodySize caps API response bodies (10MB).
	maxBodySize = 10 * 1024 * 1024
)

var (
	// ErrInvalidRepoURL indicates the input could not be parsed as a
	// GitHub repository reference.
	ErrInvalidRepoURL = errors.New("invalid GitHub repository URL")

	// ErrRepoNotFound indicates the repository does not exist or is not
	// visible with the configured token.
	ErrRepoNotFound = errors.New("repository not found")
)

// =============================================================================
// TYPES
// =============================================================================

// Entry is one item in the repository's top-level listing.
type Entry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
}

// Manifest is the subset of package.json the report cares about.
type Manifest struct {
	Dependencies map[string]string `json:"dependencies"`
	Scripts      map[string]string `json:"scripts"`
}

// RepoData aggregates everything the report needs about one repository.
type RepoData struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Structure   []Entry          `json:"structure"`
	Languages   map[string]int64 `json:"languages"`
	Readme      string           `json:"readme,omitempty"`
	Manifest    *Manifest        `json:"manifest,omitempty"`
}

// APIError is a non-OK response from the GitHub API.
type APIError struct {
	Status int
	Path   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error (HTTP %d) for %s", e.Status, e.Path)
}

// Is allows 404 APIErrors to match ErrRepoNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrRepoNotFound && e.Status == http.StatusNotFound
}

// =============================================================================
// URL PARSING
// =============================================================================

// ParseRepoURL extracts owner and repo from a GitHub URL or a bare
// "owner/repo" reference. Trailing .git and path segments beyond the
// repo name are ignored.
func ParseRepoURL(raw string) (owner, repo string, err error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.Trim(s, "/")

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a minimal GitHub REST v3 client. A token is optional;
// without one, requests count against the anonymous rate limit.
type Client struct {
	apiBase    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client. token may be empty.
func NewClient(token string) *Client {
	return &Client{
		apiBase: DefaultAPIBase,
		token:   token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// WithAPIBase overrides the API endpoint. Used by tests.
func (c *Client) WithAPIBase(base string) *Client {
	c.apiBase = strings.TrimSuffix(base, "/")
	return c
}

// Analyze fetches the full metadata bundle for one repository. Fetches
// run sequentially; README and package.json are optional and their
// absence is not an error.
func (c *Client) Analyze(ctx context.Context, repoURL string) (*RepoData, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	data := &RepoData{}

	var info struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), &info); err != nil {
		return nil, fmt.Errorf("failed to fetch repository: %w", err)
	}
	data.Name = info.Name
	data.Description = info.Description

	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/contents/", owner, repo), &data.Structure); err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}

	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/languages", owner, repo), &data.Languages); err != nil {
		return nil, fmt.Errorf("failed to fetch languages: %w", err)
	}

	// README is optional.
	var readme struct {
		Content string `json:"content"`
	}
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/readme", owner, repo), &readme); err == nil {
		if decoded, err := decodeBase64(readme.Content); err == nil {
			data.Readme = decoded
		}
	}

	// package.json is optional.
	var pkg struct {
		Content string `json:"content"`
	}
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/contents/package.json", owner, repo), &pkg); err == nil {
		if decoded, err := decodeBase64(pkg.Content); err == nil {
			var m Manifest
			if json.Unmarshal([]byte(decoded), &m) == nil {
				data.Manifest = &m
			}
		}
	}

	return data, nil
}

// get performs one API call and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Path: path}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// decodeBase64 decodes GitHub's newline-wrapped base64 content fields.
func decodeBase64(content string) (string, error) {
	cleaned := strings.ReplaceAll(content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to decode content: %w", err)
	}
	return string(decoded), nil
}
