package githubsync

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/speedial/speedial/internal/utils"
)

const (
	defaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"
)

// ErrNotFound is returned by Read when the remote file does not exist.
var ErrNotFound = errors.New("remote file not found")

// File is a file fetched from the contents API. Revision is the blob
// SHA that must be sent back on the next Write of the same path.
type File struct {
	Content  []byte
	Revision string
}

// Client talks to the GitHub repository contents API for one repo.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	owner   string
	repo    string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API endpoint (tests,
// GitHub Enterprise).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

func NewClient(cfg *Config, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
		token:   cfg.Token,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) contentsURL(path string) string {
	path = strings.TrimPrefix(path, "/")
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(c.owner), url.PathEscape(c.repo), path)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	return c.http.Do(req)
}

// Read fetches a file and its blob SHA. A missing file yields
// ErrNotFound so callers can distinguish first-time writes.
func (c *Client) Read(ctx context.Context, path string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentsURL(path), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("github read %s: %w", path, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("read", path, resp)
	}

	var body struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("github read %s: decode: %w", path, err)
	}

	// The API wraps base64 content at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("github read %s: decode content: %w", path, err)
	}
	return &File{Content: raw, Revision: body.SHA}, nil
}

// Write creates or replaces a file. revision must be the SHA returned
// by a previous Read of the same path, or empty to create a new file.
func (c *Client) Write(ctx context.Context, path, message string, content []byte, revision string) error {
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if revision != "" {
		payload["sha"] = revision
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("github write %s: %w", path, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError("write", path, resp)
	}
	return nil
}

func apiError(op, path string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("github %s %s: unexpected status %d: %s", op, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
}
