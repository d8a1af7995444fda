package usecase

import (
	"context"
	"testing"
	"time"

	"VoltWatch/internal/domain/models"
	pkgcache "VoltWatch/pkg/cache"
)

func windowRows() []models.RawReading {
	return []models.RawReading{reading(16.0, 5.2)}
}

func newCachedFetcher(t *testing.T, src *fakeSource, ttl time.Duration) *CachedWindowFetcher {
	t.Helper()
	mem := pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(16))
	t.Cleanup(func() { _ = mem.Close() })
	m := newFakeMetrics()
	inner := NewWindowFetcher(src, m, &fakeQuality{}, 5*time.Second, nil)
	return NewCachedWindowFetcher(inner, mem, m, ttl, nil)
}

func TestCachedFetchWindow_Memoizes(t *testing.T) {
	latest := reading(16.0, 5.2)
	src := &fakeSource{latest: &latest, rows: windowRows()}
	c := newCachedFetcher(t, src, time.Minute)

	first, err := c.FetchWindow(context.Background(), "voltage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.FetchWindow(context.Background(), "voltage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.latestCalls != 1 || src.rangeCalls != 1 {
		t.Errorf("expected single source query, got latest=%d range=%d", src.latestCalls, src.rangeCalls)
	}
	if first.Count != second.Count || !first.Latest.Equal(second.Latest) {
		t.Errorf("memoized window differs: %+v vs %+v", first, second)
	}
}

func TestCachedFetchWindow_InvalidateForcesRequery(t *testing.T) {
	latest := reading(16.0, 5.2)
	src := &fakeSource{latest: &latest, rows: windowRows()}
	c := newCachedFetcher(t, src, time.Minute)

	if _, err := c.FetchWindow(context.Background(), "voltage"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := c.FetchWindow(context.Background(), "voltage"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.latestCalls != 2 {
		t.Errorf("expected re-query after invalidate, got %d latest calls", src.latestCalls)
	}
}

func TestCachedFetchWindow_ErrorNotCached(t *testing.T) {
	src := &fakeSource{latestErr: context.DeadlineExceeded}
	c := newCachedFetcher(t, src, time.Minute)

	if _, err := c.FetchWindow(context.Background(), "voltage"); err == nil {
		t.Fatal("expected error")
	}

	// A subsequent call must hit the source again rather than reuse a
	// cached failure.
	latest := reading(16.0, 5.2)
	src.latestErr = nil
	src.latest = &latest
	src.rows = windowRows()

	w, err := c.FetchWindow(context.Background(), "voltage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Count != 1 {
		t.Errorf("expected fresh window, got %+v", w)
	}
	if src.latestCalls != 2 {
		t.Errorf("expected 2 source queries, got %d", src.latestCalls)
	}
}

func TestCachedFetchWindow_CollectionsIsolated(t *testing.T) {
	latest := reading(16.0, 5.2)
	src := &fakeSource{latest: &latest, rows: windowRows()}
	c := newCachedFetcher(t, src, time.Minute)

	if _, err := c.FetchWindow(context.Background(), "voltage"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.FetchWindow(context.Background(), "current"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.latestCalls != 2 {
		t.Errorf("expected one query per collection, got %d", src.latestCalls)
	}
}
