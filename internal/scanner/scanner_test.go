package scanner

import (
	"context"
	"errors"
	"testing"

	"MovieScanner/internal/domain"
	"MovieScanner/internal/ports"
)

type fakeCatalog struct {
	pages    map[int]ports.DiscoverPage
	failures map[int]int
	calls    []int
}

func (f *fakeCatalog) Discover(_ context.Context, page int) (ports.DiscoverPage, error) {
	f.calls = append(f.calls, page)
	if remaining := f.failures[page]; remaining > 0 {
		f.failures[page] = remaining - 1
		return ports.DiscoverPage{}, errors.New("boom")
	}
	result, ok := f.pages[page]
	if !ok {
		return ports.DiscoverPage{Page: page}, nil
	}
	return result, nil
}

func page(n, total int, ids ...int) ports.DiscoverPage {
	movies := make([]domain.Movie, 0, len(ids))
	for _, id := range ids {
		movies = append(movies, domain.Movie{TmdbID: id})
	}
	return ports.DiscoverPage{Movies: movies, Page: n, TotalPages: total}
}

func newTestScanner(catalog ports.Catalog, maxPages int) *Scanner {
	s := New(catalog, maxPages, nil)
	s.pageDelay = 0
	s.retryDelay = 0
	return s
}

func TestScanRespectsMaxPages(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{pages: map[int]ports.DiscoverPage{
		1: page(1, 5, 10, 11),
		2: page(2, 5, 12),
		3: page(3, 5, 13),
	}}

	movies, err := newTestScanner(catalog, 2).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("expected 3 movies, got %d", len(movies))
	}
	if len(catalog.calls) != 2 {
		t.Fatalf("expected 2 page fetches, got %v", catalog.calls)
	}
}

func TestScanStopsAtTotalPages(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{pages: map[int]ports.DiscoverPage{
		1: page(1, 2, 10),
		2: page(2, 2, 11),
	}}

	movies, err := newTestScanner(catalog, 10).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	if len(catalog.calls) != 2 {
		t.Fatalf("expected early stop after page 2, got calls %v", catalog.calls)
	}
}

func TestScanStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{pages: map[int]ports.DiscoverPage{
		1: page(1, 9, 10),
		2: page(2, 9),
	}}

	movies, err := newTestScanner(catalog, 5).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(movies))
	}
	if len(catalog.calls) != 2 {
		t.Fatalf("expected stop after empty page 2, got calls %v", catalog.calls)
	}
}

func TestScanPreservesCatalogOrder(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{pages: map[int]ports.DiscoverPage{
		1: page(1, 2, 30, 20),
		2: page(2, 2, 10),
	}}

	movies, err := newTestScanner(catalog, 2).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	want := []int{30, 20, 10}
	for i, id := range want {
		if movies[i].TmdbID != id {
			t.Fatalf("movies[%d].TmdbID = %d, want %d", i, movies[i].TmdbID, id)
		}
	}
}

func TestScanRetriesTransientFailure(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{
		pages:    map[int]ports.DiscoverPage{1: page(1, 1, 10)},
		failures: map[int]int{1: 2},
	}

	movies, err := newTestScanner(catalog, 1).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error after retries: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(movies))
	}
	if len(catalog.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %v", catalog.calls)
	}
}

func TestScanAbortsWhenRetriesExhausted(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{
		pages:    map[int]ports.DiscoverPage{1: page(1, 2, 10), 2: page(2, 2, 11)},
		failures: map[int]int{2: maxPageAttempts},
	}

	_, err := newTestScanner(catalog, 2).Scan(context.Background())
	if err == nil {
		t.Fatal("expected scan to abort after exhausting retries")
	}
}

func TestScanHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	catalog := &fakeCatalog{failures: map[int]int{1: maxPageAttempts}}
	if _, err := newTestScanner(catalog, 3).Scan(ctx); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
