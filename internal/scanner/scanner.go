package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MovieScanner/internal/domain"
	"MovieScanner/internal/ports"
)

const (
	defaultPageDelay  = 250 * time.Millisecond
	defaultRetryDelay = time.Second
	maxPageAttempts   = 3
)

// Scanner walks the catalog discovery endpoint page by page, bounded by the
// configured page limit, and flattens the results into one candidate slice.
// A failed page is retried a few times and then aborts the whole scan; a page
// is never silently skipped.
type Scanner struct {
	catalog    ports.Catalog
	maxPages   int
	pageDelay  time.Duration
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ ports.CandidateSource = (*Scanner)(nil)

// New wires a catalog client; maxPages below 1 is clamped to 1.
func New(catalog ports.Catalog, maxPages int, logger *slog.Logger) *Scanner {
	if maxPages < 1 {
		maxPages = 1
	}
	return &Scanner{
		catalog:    catalog,
		maxPages:   maxPages,
		pageDelay:  defaultPageDelay,
		retryDelay: defaultRetryDelay,
		logger:     logger,
	}
}

// Scan fetches pages 1..maxPages, stopping early when the catalog reports
// fewer total pages or returns an empty page. Order within and across pages
// is preserved as returned by the catalog.
func (s *Scanner) Scan(ctx context.Context) ([]domain.Movie, error) {
	var movies []domain.Movie

	for page := 1; page <= s.maxPages; page++ {
		result, err := s.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("discover page %d: %w", page, err)
		}

		if len(result.Movies) == 0 {
			s.debug("empty page, stopping scan", "page", page)
			break
		}

		movies = append(movies, result.Movies...)
		s.debug("page scanned", "page", page, "entries", len(result.Movies), "total_pages", result.TotalPages)

		if result.TotalPages > 0 && page >= result.TotalPages {
			break
		}

		if page < s.maxPages {
			if err := sleep(ctx, s.pageDelay); err != nil {
				return nil, err
			}
		}
	}

	return movies, nil
}

func (s *Scanner) fetchPage(ctx context.Context, page int) (ports.DiscoverPage, error) {
	var lastErr error
	for attempt := 1; attempt <= maxPageAttempts; attempt++ {
		result, err := s.catalog.Discover(ctx, page)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ports.DiscoverPage{}, err
		}
		if attempt < maxPageAttempts {
			s.debug("page fetch failed, retrying", "page", page, "attempt", attempt, "error", err)
			if sleepErr := sleep(ctx, s.retryDelay); sleepErr != nil {
				return ports.DiscoverPage{}, sleepErr
			}
		}
	}
	return ports.DiscoverPage{}, fmt.Errorf("after %d attempts: %w", maxPageAttempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Scanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
