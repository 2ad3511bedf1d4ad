// Package covers keeps local copies of shelf entry cover images so they are
// served without hitting the catalog's image host.
package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

// MaxCoverBytes bounds a single downloaded image.
const MaxCoverBytes = 5 << 20

// ErrHostNotAllowed is returned for a cover URL, or a redirect, outside the allowed hosts.
var ErrHostNotAllowed = errors.New("cover host not allowed")

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Cache stores cover images on disk, one file per (entry, url) pair.
type Cache struct {
	cacheDir     string
	allowedHosts []string
	httpClient   *http.Client
}

// NewCache creates a new cover cache at the specified directory. Covers are
// only fetched from allowedHosts, or from catalog.ImageHosts when none are given.
func NewCache(cacheDir string, allowedHosts ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if len(allowedHosts) == 0 {
		allowedHosts = catalog.ImageHosts
	}

	c := &Cache{
		cacheDir:     cacheDir,
		allowedHosts: allowedHosts,
	}
	c.httpClient = &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			if !catalog.IsImageURL(req.URL.String(), c.allowedHosts) {
				return fmt.Errorf("redirect to %s: %w", req.URL.Host, ErrHostNotAllowed)
			}
			return nil
		},
	}
	return c, nil
}

// Path returns where the cover of entryID would be stored and whether it is present.
func (c *Cache) Path(entryID, coverURL string) (string, bool) {
	path := filepath.Join(c.cacheDir, coverFilename(entryID, coverURL))
	_, err := os.Stat(path)
	return path, err == nil
}

// GetCover returns the cached cover path, downloading it first when missing.
// An empty URL yields an empty path.
func (c *Cache) GetCover(ctx context.Context, entryID, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	path, ok := c.Path(entryID, coverURL)
	if ok {
		return path, nil
	}

	if err := c.fetchAndCache(ctx, coverURL, path); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Cache) CacheDir() string {
	return c.cacheDir
}

func coverFilename(entryID, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%s_%x.jpg", unsafeIDChars.ReplaceAllString(entryID, "_"), hash[:8])
}

// fetchAndCache downloads into a temp file and renames it into place.
func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	if !catalog.IsImageURL(url, c.allowedHosts) {
		return ErrHostNotAllowed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Bookshelf/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("failed to fetch cover: unexpected content type %q", ct)
	}

	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, MaxCoverBytes+1))
	if err != nil {
		return err
	}
	if n > MaxCoverBytes {
		return fmt.Errorf("failed to fetch cover: larger than %d bytes", MaxCoverBytes)
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, cachePath)
}
