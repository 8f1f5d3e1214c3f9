package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/juxtarchive/juxtarchive/internal/imagehash"
)

// Client fetches pages from the platform frontend and extracts structured
// records from their server-rendered HTML.
//
// Design decision: We scrape the HTML frontend rather than an API because
// the platform exposes no public API: the frontend is the archive's only
// window into the data. Selectors live in this package only, so a frontend
// markup change is contained here.
type Client struct {
	// httpClient performs all platform requests.
	httpClient *http.Client

	// base is the platform root URL all resource paths resolve against.
	base *url.URL

	// userAgent is sent with every request.
	userAgent string

	// maxImageBytes limits image downloads during hash computation.
	maxImageBytes int64

	// logger records fetch and parse failures.
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
// Useful for tests and for callers that need custom transports.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxImageBytes limits how many bytes of an image are read when
// computing its perceptual hash.
func WithMaxImageBytes(n int64) ClientOption {
	return func(c *Client) {
		c.maxImageBytes = n
	}
}

// WithLogger sets the logger used for fetch and parse diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the platform at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		base:          base,
		userAgent:     "juxtarchive/1.0",
		maxImageBytes: 10 * 1024 * 1024,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// getDocument fetches a platform path and parses it into a goquery document.
// An HTTP 204 response is the platform's end-of-pagination signal and is
// returned as ErrEndOfData.
func (c *Client) getDocument(ctx context.Context, path string, query url.Values) (*goquery.Document, error) {
	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, ErrEndOfData
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, u.Path)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", u.Path, err)
	}
	return doc, nil
}

// imageHash downloads an image and returns its perceptual hash.
// Any failure degrades to an empty hash: a broken image must not fail the
// item it is attached to.
func (c *Client) imageHash(ctx context.Context, imageURL string) string {
	if imageURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		c.logger.Debug("skipping unparseable image URL", "url", imageURL, "error", err)
		return ""
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("image fetch failed", "url", imageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("image fetch failed", "url", imageURL, "status", resp.StatusCode)
		return ""
	}

	hash, err := imagehash.Hash(io.LimitReader(resp.Body, c.maxImageBytes))
	if err != nil {
		c.logger.Debug("image hash failed", "url", imageURL, "error", err)
		return ""
	}
	return hash
}
