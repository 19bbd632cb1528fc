package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Movie is a core entity describing a candidate fetched from the catalog.
type Movie struct {
	TmdbID           int
	Title            string
	OriginalTitle    string
	OriginalLanguage string
	GenreIDs         []int
	VoteAverage      float64
	VoteCount        int
	ReleaseDate      string
}

// DisplayTitle resolves the best available human-readable title.
func (m Movie) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	if m.OriginalTitle != "" {
		return m.OriginalTitle
	}
	return fmt.Sprintf("tmdb:%d", m.TmdbID)
}

// LibraryMovie is a movie the library manager already tracks; only the
// external catalog identifier matters for reconciliation.
type LibraryMovie struct {
	ID     int
	TmdbID int
}

// NameOrID holds a configuration value that addresses a registry entry
// either by numeric identifier or by name. Keeping the two cases explicit
// avoids treating a profile named "1080" as ID 1080.
type NameOrID struct {
	name string
	id   int
	byID bool
}

// ParseNameOrID classifies a raw config value. Whitespace is trimmed; an
// all-digit value is an ID, anything else a name. Empty input yields a zero
// value reported by IsZero.
func ParseNameOrID(raw string) NameOrID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NameOrID{}
	}
	if id, err := strconv.Atoi(raw); err == nil && id >= 0 {
		return NameOrID{id: id, byID: true}
	}
	return NameOrID{name: raw}
}

// ID returns the numeric identifier and whether the value holds one.
func (n NameOrID) ID() (int, bool) {
	return n.id, n.byID
}

// Name returns the symbolic name; empty when the value holds an ID.
func (n NameOrID) Name() string {
	return n.name
}

// IsZero reports whether the value was parsed from empty input.
func (n NameOrID) IsZero() bool {
	return !n.byID && n.name == ""
}

func (n NameOrID) String() string {
	if n.byID {
		return strconv.Itoa(n.id)
	}
	return n.name
}

// AddPlan carries the run-global parameters applied to every add command.
// It is resolved once per run against the manager's live registries.
type AddPlan struct {
	RootFolder          string
	QualityProfileID    int
	TagIDs              []int
	Monitored           bool
	SearchOnAdd         bool
	MinimumAvailability string
	DryRun              bool
}

// RunSummary counts pipeline outcomes for one execution.
type RunSummary struct {
	Scanned    int
	Matched    int
	Duplicates int
	InLibrary  int
	Skipped    int
	Failed     int
	Added      int
	DryRun     bool
}
