package criteria

import (
	"strconv"
	"strings"

	"MovieScanner/internal/config"
	"MovieScanner/internal/domain"
)

// Criteria is a run-scoped snapshot of the candidate filter. It is built once
// from configuration and read-only afterwards.
type Criteria struct {
	OriginalLanguage string
	IncludeGenreIDs  map[int]struct{}
	MinVoteAverage   float64
	MinVoteCount     int
	YearFrom         int
	YearTo           int
}

// FromConfig snapshots the discovery settings into a Criteria.
func FromConfig(cfg config.DiscoveryConfig) Criteria {
	genres := make(map[int]struct{}, len(cfg.IncludeGenreIDs))
	for _, id := range cfg.IncludeGenreIDs {
		genres[id] = struct{}{}
	}
	return Criteria{
		OriginalLanguage: cfg.OriginalLanguage,
		IncludeGenreIDs:  genres,
		MinVoteAverage:   cfg.MinVoteAverage,
		MinVoteCount:     cfg.MinVoteCount,
		YearFrom:         cfg.YearFrom,
		YearTo:           cfg.YearTo,
	}
}

// Matches reports whether a catalog entry satisfies every predicate. The
// language comparison is exact as supplied by the catalog; an empty genre set
// means "any genre"; an entry with an empty or unparsable release date never
// matches.
func (c Criteria) Matches(m domain.Movie) bool {
	if m.OriginalLanguage != c.OriginalLanguage {
		return false
	}
	if len(c.IncludeGenreIDs) > 0 && !c.intersectsGenres(m.GenreIDs) {
		return false
	}
	if m.VoteAverage < c.MinVoteAverage {
		return false
	}
	if m.VoteCount < c.MinVoteCount {
		return false
	}
	year, ok := ReleaseYear(m.ReleaseDate)
	if !ok {
		return false
	}
	return year >= c.YearFrom && year <= c.YearTo
}

func (c Criteria) intersectsGenres(ids []int) bool {
	for _, id := range ids {
		if _, ok := c.IncludeGenreIDs[id]; ok {
			return true
		}
	}
	return false
}

// ReleaseYear parses the leading year segment of a catalog release date
// ("2021-01-01"). It reports false for empty or malformed input rather than
// failing, so sparse catalog data cannot abort a run.
func ReleaseYear(date string) (int, bool) {
	if date == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(head)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
