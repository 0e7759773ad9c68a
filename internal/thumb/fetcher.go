package thumb

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/speedial/speedial/internal/logger"
	"github.com/speedial/speedial/internal/utils"
)

// Fetcher downloads a remote image and returns it as a data URI
// ("data:<mime>;base64,..."), suitable for storing alongside a dial so
// the page renders without a network round trip. The cache is optional.
type Fetcher struct {
	http    *http.Client
	maxSize int64
	cache   *Cache
	log     logger.Logger
}

func NewFetcher(timeout time.Duration, maxSize int64, cache *Cache, log logger.Logger) *Fetcher {
	return &Fetcher{
		http:    &http.Client{Timeout: timeout},
		maxSize: maxSize,
		cache:   cache,
		log:     log,
	}
}

// Fetch resolves url to a base64 data URI. Cache hits skip the HTTP
// request entirely; cache failures are logged and fetching proceeds.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		cached, err := f.cache.Get(ctx, url)
		if err != nil {
			f.log.Warn("thumb cache lookup failed", logger.String("url", url), logger.Error(err))
		} else if cached != "" {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch thumbnail: %w", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch thumbnail %s: %w", url, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch thumbnail %s: unexpected status %d", url, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.maxSize > 0 {
		reader = io.LimitReader(resp.Body, f.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("fetch thumbnail %s: read body: %w", url, err)
	}
	if f.maxSize > 0 && int64(len(data)) > f.maxSize {
		return "", fmt.Errorf("fetch thumbnail %s: payload exceeds %d bytes", url, f.maxSize)
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("fetch thumbnail %s: not an image (%s)", url, mime)
	}

	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)

	if f.cache != nil {
		if err := f.cache.Set(ctx, url, uri); err != nil {
			f.log.Warn("thumb cache store failed", logger.String("url", url), logger.Error(err))
		}
	}
	return uri, nil
}
