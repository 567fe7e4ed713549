package resources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"f1lapcompare/pkg/helper"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheDir = "./f1_cache"
	suffix          = ".json"
	tmpPattern      = "fetch-*.tmp"
)

// HTTPError is returned when the provider answers with anything but 200 OK.
type HTTPError struct {
	Status     string
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("error getting %s: %s", e.URL, e.Status)
}

// Cache stores raw provider responses on disk, one file per request URL. Concurrent Gets of
// the same URL share one request; different URLs are fetched in parallel.
type Cache struct {
	dir    string
	ttl    time.Duration
	client *http.Client
	group  singleflight.Group
	// guards the cache files, never held across a network call
	mu sync.RWMutex
}

func NewCache(dir string, ttl time.Duration, client *http.Client) (*Cache, error) {
	if dir == "" {
		dir = DefaultCacheDir
	}
	if client == nil {
		client = http.DefaultClient
	}
	// create cache dir if not exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating cache dir %s", dir)
	}
	return &Cache{
		dir:    dir,
		ttl:    ttl,
		client: client,
	}, nil
}

func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) filePath(url string) string {
	return filepath.Join(c.dir, helper.ToID(url)+suffix)
}

// Get returns the body for url, from disk when already cached, otherwise from the network.
// Only successful, non-empty responses are written to disk.
func (c *Cache) Get(ctx context.Context, url string) ([]byte, error) {
	filePath := c.filePath(url)
	data, found, err := c.read(filePath)
	if err != nil {
		return nil, err
	}
	if found {
		logrus.Debugf("cache hit for %q", url)
		return data, nil
	}

	v, err, shared := c.group.Do(url, func() (interface{}, error) {
		// another caller may have stored it while we were waiting
		if data, found, err := c.read(filePath); err != nil || found {
			return data, err
		}
		data, err := c.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		if isEmptyList(data) {
			logrus.Debugf("not caching empty response for %q", url)
			return data, nil
		}
		if err := c.write(filePath, data); err != nil {
			// the response is still usable
			logrus.WithError(err).Warnf("could not cache response for %q", url)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logrus.Debugf("shared in-flight request for %q", url)
	}
	return v.([]byte), nil
}

func (c *Cache) read(filePath string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(filePath)
	if err == nil {
		return data, true, nil
	}
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	return nil, false, errors.Wrapf(err, "reading cached response %s", filePath)
}

// write stores data through a temp file so readers never see a partial response.
func (c *Cache) write(filePath string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, tmpPattern)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), filePath), "storing %s", filePath)
}

// isEmptyList reports whether the provider answered with no records. Those answers change
// once the provider publishes the session, so they are not cached.
func isEmptyList(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("[]"))
}

func (c *Cache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")

	response, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "requesting %s", url)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &HTTPError{Status: response.Status, StatusCode: response.StatusCode, URL: url}
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading response of %s", url)
	}
	return data, nil
}

// Purge removes cached files older than the TTL and returns how many were removed.
// A zero TTL keeps everything.
func (c *Cache) Purge(now time.Time) (int, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, errors.Wrapf(err, "listing cache dir %s", c.dir)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > c.ttl {
			if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
				logrus.WithError(err).Warnf("could not remove cached file %s", entry.Name())
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// Sync purges expired responses on every tick until exitChan is signalled.
func (c *Cache) Sync(ticker *time.Ticker, exitChan <-chan bool) {
	go func() {
		for {
			select {
			case <-exitChan:
				return
			case t := <-ticker.C:
				removed, err := c.Purge(t)
				if err != nil {
					logrus.WithError(err).Error("purging response cache")
					continue
				}
				logrus.Infof("Purged %d cached responses at: %s", removed, t.Format(time.RFC3339))
			}
		}
	}()
}
