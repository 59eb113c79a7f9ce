package netcache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache provides a simple persistent HTTP cache with ETag/Last-Modified support.
type Cache struct {
	Dir    string
	Client *http.Client

	// Attempts bounds full fetches; Backoff is the delay before the second
	// attempt and doubles after each failure.
	Attempts int
	Backoff  time.Duration
}

// New returns a new Cache with a reasonable default HTTP client.
func New(dir string) *Cache {
	return &Cache{
		Dir:      dir,
		Client:   &http.Client{Timeout: time.Minute},
		Attempts: 3,
		Backoff:  2 * time.Second,
	}
}

// DefaultDir is the per-user cache directory, or a temp directory when the
// user has none.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "yartl")
	}
	return filepath.Join(os.TempDir(), "yartl-cache")
}

type meta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
	// DataFile is the basename of the cached payload file
	DataFile string `json:"data_file"`
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *StatusError) retryable() bool { return e.StatusCode >= 500 }

// Get fetches the URL into the cache and returns a local file path.
// If the cache is valid, it is reused without downloading.
// Returns (path, fromCache, error).
func (c *Cache) Get(ctx context.Context, url string) (string, bool, error) {
	key := Key(url)
	mpath := filepath.Join(c.Dir, key+".json")

	if m, ok := c.readMeta(mpath, url); ok {
		path, fromCache, err := c.revalidate(ctx, url, key, mpath, m)
		if err == nil {
			return path, fromCache, nil
		}
		// Serve the stale copy when the origin cannot be reached.
		slog.Warn("revalidation failed, using cached copy", "url", url, "error", err)
		return filepath.Join(c.Dir, m.DataFile), true, nil
	}

	attempts := max(c.Attempts, 1)
	backoff := c.Backoff
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", false, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", false, err
		}
		path, err := c.fetch(req, url, key, mpath)
		if err == nil {
			return path, false, nil
		}
		lastErr = err
		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			break
		}
		slog.Debug("fetch failed", "url", url, "attempt", attempt+1, "error", err)
	}
	return "", false, lastErr
}

// Fetch returns the body of url, through the cache.
func (c *Cache) Fetch(ctx context.Context, url string) ([]byte, error) {
	path, fromCache, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	slog.Debug("fetched", "url", url, "cached", fromCache, "path", path)
	return os.ReadFile(path)
}

func (c *Cache) readMeta(mpath, url string) (meta, bool) {
	var m meta
	b, err := os.ReadFile(mpath)
	if err != nil {
		return m, false
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, false
	}
	if m.URL != url || m.DataFile == "" || !fileExists(filepath.Join(c.Dir, m.DataFile)) {
		return m, false
	}
	return m, true
}

// revalidate issues a conditional GET for a cached entry.
func (c *Cache) revalidate(ctx context.Context, url, key, mpath string, m meta) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, err
	}
	if m.ETag != "" {
		req.Header.Set("If-None-Match", m.ETag)
	}
	if m.LastModified != "" {
		req.Header.Set("If-Modified-Since", m.LastModified)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		slog.Debug("cache hit", "url", url)
		return filepath.Join(c.Dir, m.DataFile), true, nil
	}
	path, err := c.store(resp, url, key, mpath)
	return path, false, err
}

func (c *Cache) fetch(req *http.Request, url, key, mpath string) (string, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	return c.store(resp, url, key, mpath)
}

// store writes a 2xx response body and its validators into the cache. It
// always closes the body.
func (c *Cache) store(resp *http.Response, url, key, mpath string) (string, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	dataFile := key + ".data"
	path := filepath.Join(c.Dir, dataFile)
	if err := streamToFile(resp.Body, path, 0o644); err != nil {
		return "", err
	}
	nm := meta{
		URL:          url,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    time.Now().UTC(),
		DataFile:     dataFile,
	}
	if err := writeMeta(mpath, nm); err != nil {
		return "", err
	}
	slog.Debug("cached", "url", url, "etag", nm.ETag, "path", path)
	return path, nil
}

func streamToFile(r io.Reader, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp := dst + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func writeMeta(path string, m meta) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Key is the cache file stem for url.
func Key(url string) string {
	sum := blake3.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
