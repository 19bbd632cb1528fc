package ports

import (
	"context"
	"errors"

	"MovieScanner/internal/domain"
)

// ErrNotFound reports that the library manager has no record for a
// catalog ID. Lookup implementations return it so the pipeline can skip
// the candidate instead of failing the run.
var ErrNotFound = errors.New("movie not found")

// DiscoverPage is one page of catalog discovery results.
type DiscoverPage struct {
	Movies     []domain.Movie
	Page       int
	TotalPages int
}

// Catalog pulls candidate movies from the metadata catalog.
type Catalog interface {
	Discover(ctx context.Context, page int) (DiscoverPage, error)
}

// CandidateSource yields the full candidate set for one run.
type CandidateSource interface {
	Scan(ctx context.Context) ([]domain.Movie, error)
}

// QualityProfile is a named quality preset registered with the library manager.
type QualityProfile struct {
	ID   int
	Name string
}

// Tag is a named label registered with the library manager.
type Tag struct {
	ID    int
	Label string
}

// MovieResource is the manager-native movie record required to issue an add.
type MovieResource struct {
	TmdbID int
	Title  string
	Year   int
}

// AddRequest carries one add-movie command with its run-global settings.
type AddRequest struct {
	Movie               MovieResource
	RootFolder          string
	QualityProfileID    int
	TagIDs              []int
	Monitored           bool
	SearchOnAdd         bool
	MinimumAvailability string
}

// Library exposes the manager operations the pipeline depends on.
type Library interface {
	Movies(ctx context.Context) ([]domain.LibraryMovie, error)
	QualityProfiles(ctx context.Context) ([]QualityProfile, error)
	RootFolders(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]Tag, error)
	CreateTag(ctx context.Context, label string) (Tag, error)
	Lookup(ctx context.Context, tmdbID int) (MovieResource, error)
	Add(ctx context.Context, req AddRequest) (MovieResource, error)
}
