package cms

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"resty.dev/v3"

	"takotools.com/tako-web/internal/catalog"
)

// ErrNotFound is returned when a document cannot be located.
var ErrNotFound = errors.New("cms: not found")

// StatusError reports a non-success response from the remote document host.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms: %s responded %d", e.URL, e.Code)
}

const (
	defaultTimeout     = 5 * time.Second
	defaultCacheTTL    = time.Minute
	defaultDataDir     = "data"
	defaultContentFile = "content.json"
	defaultToolsFile   = "tools.json"
)

// Options configures a Client. When BaseURL is empty documents are read from
// DataDir.
type Options struct {
	BaseURL     string
	DataDir     string
	ContentFile string
	ToolsFile   string
	Timeout     time.Duration
	CacheTTL    time.Duration
}

// Client provides read-only access to the content and tools documents with a
// short read-through cache.
type Client struct {
	baseURL     string
	dataDir     string
	contentFile string
	toolsFile   string
	timeout     time.Duration
	http        *resty.Client

	cacheTTL time.Duration
	mu       sync.RWMutex
	cache    map[string]cacheEntry
	now      func() time.Time
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// NewClient constructs a Client from opts, filling defaults.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ttl := opts.CacheTTL
	if ttl < 0 {
		ttl = 0
	} else if ttl == 0 {
		ttl = defaultCacheTTL
	}
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		dataDir:     firstNonEmpty(strings.TrimSpace(opts.DataDir), defaultDataDir),
		contentFile: firstNonEmpty(strings.TrimSpace(opts.ContentFile), defaultContentFile),
		toolsFile:   firstNonEmpty(strings.TrimSpace(opts.ToolsFile), defaultToolsFile),
		timeout:     timeout,
		cacheTTL:    ttl,
		cache:       map[string]cacheEntry{},
		now:         time.Now,
	}
	if c.baseURL != "" {
		// No retries: a failed load surfaces as an inline message until reload.
		c.http = resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")
	}
	return c
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	if c == nil || c.http == nil {
		return nil
	}
	return c.http.Close()
}

// Source describes where documents are read from, for logs and diagnostics.
func (c *Client) Source() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return c.dataDir
}

// Content loads and decodes the site content document.
func (c *Client) Content(ctx context.Context) (Document, error) {
	body, err := c.fetch(ctx, c.contentFile)
	if err != nil {
		return Document{}, err
	}
	if isYAML(c.contentFile) {
		return DecodeDocumentYAML(body)
	}
	return DecodeDocumentJSON(body)
}

// Tools loads and decodes the tools catalog. A document without an items
// array yields an empty catalog.
func (c *Client) Tools(ctx context.Context) ([]catalog.Tool, error) {
	body, err := c.fetch(ctx, c.toolsFile)
	if err != nil {
		return nil, err
	}
	if isYAML(c.toolsFile) {
		return catalog.DecodeToolsYAML(body)
	}
	return catalog.DecodeToolsJSON(body)
}

// Purge empties the document cache.
func (c *Client) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[string]cacheEntry{}
}

func (c *Client) fetch(ctx context.Context, name string) ([]byte, error) {
	if body, ok := c.cached(name); ok {
		return body, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		body []byte
		err  error
	)
	if c.baseURL != "" {
		body, err = c.fetchRemote(ctx, name)
	} else {
		body, err = c.fetchLocal(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	c.store(name, body)
	return body, nil
}

func (c *Client) fetchRemote(ctx context.Context, name string) ([]byte, error) {
	endpoint, err := url.JoinPath(c.baseURL, name)
	if err != nil {
		return nil, fmt.Errorf("cms: join path %s: %w", name, err)
	}
	resp, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("cms: fetch %s: %w", endpoint, ctx.Err())
		}
		return nil, fmt.Errorf("cms: fetch %s: %w", endpoint, err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("cms: %s: %w", endpoint, ErrNotFound)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{URL: endpoint, Code: resp.StatusCode()}
	}
	return []byte(resp.String()), nil
}

func (c *Client) fetchLocal(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(c.dataDir, filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cms: %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("cms: read %s: %w", path, err)
	}
	return data, nil
}

func (c *Client) cached(name string) ([]byte, bool) {
	if c.cacheTTL == 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.cache[name]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (c *Client) store(name string, body []byte) {
	if c.cacheTTL == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[name] = cacheEntry{body: body, expires: c.now().Add(c.cacheTTL)}
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
