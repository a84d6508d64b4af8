package fetch

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/fterm"
	"go.uber.org/zap"
)

// diskCache implements a simple disk cache for HTTP responses.
//
// Entries are keyed by the current period, so they all expire when the period changes.
// Requests with a "Cache-Control: no-cache" or "no-store" header bypass it.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	period fterm.Period
	logger *zap.Logger
}

// NewCache returns a RoundTripper that stores successful GET responses in dir.
// Entries expire at the end of the period containing today.
func NewCache(base http.RoundTripper, dir string, period fterm.Period, logger *zap.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "fterm")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &diskCache{base: base, dir: dir, period: period, logger: logger}
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If a fresh cached response is not found, it proceeds
// with the actual HTTP request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base.RoundTrip(req)
	}
	if bypass(req) {
		c.logger.Debug("cache bypass", zap.String("host", req.URL.Host), zap.String("path", req.URL.Path))
		return c.base.RoundTrip(req)
	}
	key := c.key(req)

	if cached, err := c.get(key, req); err == nil {
		c.logger.Debug("cache hit", zap.String("host", req.URL.Host), zap.String("path", req.URL.Path))
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("http",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.String("status", resp.Status))
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		c.logger.Warn("cache write failed (ignored)", zap.Error(err))
	}
	return resp, nil
}

// bypass reports whether the request asks for a fresh response.
func bypass(req *http.Request) bool {
	for _, directive := range strings.Split(req.Header.Get("Cache-Control"), ",") {
		switch strings.ToLower(strings.TrimSpace(directive)) {
		case "no-cache", "no-store":
			return true
		}
	}
	return false
}

func (c *diskCache) key(req *http.Request) string {
	rangeID := c.period.Range(fterm.Today()).Identifier()
	key := fmt.Sprintf("%s %s %s", rangeID, req.Method, req.URL.String())
	return fmt.Sprintf("%s-%x", c.period, sha1.Sum([]byte(key)))
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk cache.
//
// DumpResponse reads the body and replaces it, so resp remains readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o600)
}
