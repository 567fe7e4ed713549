package resources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetStoresAndReuses(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`[{"lap_number":1}]`))
	}))
	defer srv.Close()

	c, err := NewCache(t.TempDir(), time.Hour, srv.Client())
	require.NoError(t, err)

	first, err := c.Get(context.Background(), srv.URL+"/v1/laps?session_key=1")
	require.NoError(t, err)
	second, err := c.Get(context.Background(), srv.URL+"/v1/laps?session_key=1")
	require.NoError(t, err)

	assert.Equal(t, `[{"lap_number":1}]`, string(first))
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	c, err := NewCache(dir, time.Hour, srv.Client())
	require.NoError(t, err)

	_, err = c.Get(context.Background(), srv.URL+"/v1/sessions")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)

	_, _ = c.Get(context.Background(), srv.URL+"/v1/sessions")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCache_DifferentURLsFetchInParallel(t *testing.T) {
	const delay = 300 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		_, _ = w.Write([]byte(`[{"path":"` + r.URL.Path + `"}]`))
	}))
	defer srv.Close()

	c, err := NewCache(t.TempDir(), time.Hour, srv.Client())
	require.NoError(t, err)

	paths := []string{"/v1/sessions", "/v1/drivers", "/v1/laps", "/v1/car_data"}
	bodies := make([]string, len(paths))
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	start := time.Now()
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			data, err := c.Get(context.Background(), srv.URL+path)
			bodies[i], errs[i] = string(data), err
		}(i, path)
	}
	wg.Wait()
	elapsed := time.Since(start)

	for i, path := range paths {
		require.NoError(t, errs[i])
		assert.Contains(t, bodies[i], path)
	}
	assert.Less(t, elapsed, 2*delay, "fetches of different urls must not wait for each other")
}

func TestCache_SameURLIsFetchedOnce(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`[{"session_key":9158}]`))
	}))
	defer srv.Close()

	c, err := NewCache(t.TempDir(), time.Hour, srv.Client())
	require.NoError(t, err)

	const callers = 5
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := c.Get(context.Background(), srv.URL+"/v1/sessions?year=2024")
			if err != nil {
				results <- err.Error()
				return
			}
			results <- string(data)
		}()
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for body := range results {
		assert.Equal(t, `[{"session_key":9158}]`, body)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestCache_EmptyListsAreNotCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			_, _ = w.Write([]byte("[]\n"))
			return
		}
		_, _ = w.Write([]byte(`[{"session_key":9999}]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c, err := NewCache(dir, time.Hour, srv.Client())
	require.NoError(t, err)

	first, err := c.Get(context.Background(), srv.URL+"/v1/sessions?year=2025")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(first)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	second, err := c.Get(context.Background(), srv.URL+"/v1/sessions?year=2025")
	require.NoError(t, err)
	assert.Equal(t, `[{"session_key":9999}]`, string(second))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestCache_FileNamesAreFullHashes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"q":"` + r.URL.RawQuery + `"}]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c, err := NewCache(dir, time.Hour, srv.Client())
	require.NoError(t, err)

	_, err = c.Get(context.Background(), srv.URL+"/v1/laps?driver_number=1")
	require.NoError(t, err)
	_, err = c.Get(context.Background(), srv.URL+"/v1/laps?driver_number=44")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Len(t, strings.TrimSuffix(entry.Name(), suffix), 64)
	}
}

func TestCache_Purge(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Hour, nil)
	require.NoError(t, err)

	old := filepath.Join(dir, "old.json")
	fresh := filepath.Join(dir, "fresh.json")
	other := filepath.Join(dir, "notes.txt")
	for _, f := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(f, []byte("{}"), 0644))
	}
	now := time.Now()
	require.NoError(t, os.Chtimes(old, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(other, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))

	removed, err := c.Purge(now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestCache_PurgeWithoutTTL(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0, nil)
	require.NoError(t, err)

	removed, err := c.Purge(time.Now().Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)
}
