package fetch

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"

	fourier "github.com/yyyoichi/fourier_zero"
	"github.com/yyyoichi/httpcache-go"
)

// Client downloads remote images and keeps the responses in a storage cache.
type Client struct {
	client httpcache.Client
}

// New returns a client caching responses under cacheDir.
func New(cacheDir string) *Client {
	return NewWithClient(http.DefaultClient, cacheDir)
}

// NewWithClient wraps hc with a storage cache under cacheDir.
func NewWithClient(hc *http.Client, cacheDir string) *Client {
	if !strings.HasSuffix(cacheDir, "/") {
		cacheDir += "/"
	}
	return &Client{client: httpcache.Client{
		Client:  hc,
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}}
}

// IsURL reports whether s should be fetched instead of opened as a file.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Image fetches and decodes the JPEG or PNG image at uri.
func (c *Client) Image(ctx context.Context, uri string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	img, _, err := fourier.Decode(resp.Body)
	if err != nil {
		return nil, err
	}
	return img, nil
}
