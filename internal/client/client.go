// Package client talks to the library server over HTTP. It implements the
// tree store's Remote and Uploader, plus the AI and Notion calls the CLI
// makes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sanctum/internal/domain/models/library"
	aiSvc "sanctum/internal/domain/services/ai"
	notionSvc "sanctum/internal/domain/services/notion"
)

// Client is a library server client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithToken sends an Authorization bearer token on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default client (30s timeout)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the success body of the files, AI and Notion endpoints
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Changes *int64          `json:"changes"`
}

// LoadAll fetches the whole tree
func (c *Client) LoadAll(ctx context.Context) (library.FileSystem, error) {
	var fs library.FileSystem
	if err := c.call(ctx, http.MethodGet, "/api/files", nil, nil, &fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// CreateNode posts the full record, id included
func (c *Client) CreateNode(ctx context.Context, node *library.Node) error {
	return c.call(ctx, http.MethodPost, "/api/files", node, nil, nil)
}

// UpdateNode sends a partial update carrying the node's version
func (c *Client) UpdateNode(ctx context.Context, id string, patch *library.NodePatch) error {
	return c.call(ctx, http.MethodPut, "/api/files/"+url.PathEscape(id), patch, nil, nil)
}

// DeleteNode deletes id; the server removes the subtree
func (c *Client) DeleteNode(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil, nil)
}

// Upload sends a file through the binary side-channel and returns its URL
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("upload %s: server returned no url", filename)
	}
	return resp.URL, nil
}

// Summarize asks the server's librarian for a summary
func (c *Client) Summarize(ctx context.Context, content string, docType aiSvc.DocType) (string, error) {
	var reply struct {
		Text string `json:"text"`
	}
	req := map[string]interface{}{"content": content, "docType": docType}
	if err := c.call(ctx, http.MethodPost, "/api/ai/summarize", req, nil, &reply); err != nil {
		return "", err
	}
	return reply.Text, nil
}

// Ask asks the server's librarian a question about contextText
func (c *Client) Ask(ctx context.Context, question, contextText string) (string, error) {
	var reply struct {
		Text string `json:"text"`
	}
	req := map[string]string{"question": question, "context": contextText}
	if err := c.call(ctx, http.MethodPost, "/api/ai/ask", req, nil, &reply); err != nil {
		return "", err
	}
	return reply.Text, nil
}

// NotionPages lists the pages the Notion token can see
func (c *Client) NotionPages(ctx context.Context, notionToken string) ([]notionSvc.Page, error) {
	var pages []notionSvc.Page
	headers := map[string]string{notionSvc.TokenHeader: notionToken}
	if err := c.call(ctx, http.MethodGet, "/api/notion/pages", nil, headers, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// NotionMarkdown fetches one page rendered as markdown
func (c *Client) NotionMarkdown(ctx context.Context, notionToken, pageID string) (string, error) {
	var page struct {
		Markdown string `json:"markdown"`
	}
	headers := map[string]string{notionSvc.TokenHeader: notionToken}
	path := "/api/notion/pages/" + url.PathEscape(pageID) + "/markdown"
	if err := c.call(ctx, http.MethodGet, path, nil, headers, &page); err != nil {
		return "", err
	}
	return page.Markdown, nil
}

// call sends a JSON request and decodes the envelope's data into out
func (c *Client) call(ctx context.Context, method, path string, in interface{}, headers map[string]string, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	var env envelope
	if err := c.do(req, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do executes req and decodes a 2xx JSON body into out, or a problem body
// into an *APIError
func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
