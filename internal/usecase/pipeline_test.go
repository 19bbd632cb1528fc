package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"MovieScanner/internal/config"
	"MovieScanner/internal/criteria"
	"MovieScanner/internal/domain"
	"MovieScanner/internal/ports"
	"MovieScanner/internal/report"
	"MovieScanner/internal/usecase"
)

type fakeSource struct {
	movies []domain.Movie
	err    error
}

func (f *fakeSource) Scan(context.Context) ([]domain.Movie, error) {
	return f.movies, f.err
}

type fakeLibrary struct {
	movies      []domain.LibraryMovie
	moviesErr   error
	profiles    []ports.QualityProfile
	profilesErr error
	roots       []string
	tags        []ports.Tag
	nextTagID   int
	createdTags []string
	lookupErrs  map[int]error
	addErrs     map[int]error
	added       []ports.AddRequest
}

func (f *fakeLibrary) Movies(context.Context) ([]domain.LibraryMovie, error) {
	return f.movies, f.moviesErr
}

func (f *fakeLibrary) QualityProfiles(context.Context) ([]ports.QualityProfile, error) {
	return f.profiles, f.profilesErr
}

func (f *fakeLibrary) RootFolders(context.Context) ([]string, error) {
	return f.roots, nil
}

func (f *fakeLibrary) Tags(context.Context) ([]ports.Tag, error) {
	return f.tags, nil
}

func (f *fakeLibrary) CreateTag(_ context.Context, label string) (ports.Tag, error) {
	f.createdTags = append(f.createdTags, label)
	f.nextTagID++
	tag := ports.Tag{ID: 100 + f.nextTagID, Label: label}
	f.tags = append(f.tags, tag)
	return tag, nil
}

func (f *fakeLibrary) Lookup(_ context.Context, tmdbID int) (ports.MovieResource, error) {
	if err := f.lookupErrs[tmdbID]; err != nil {
		return ports.MovieResource{}, err
	}
	return ports.MovieResource{TmdbID: tmdbID, Title: fmt.Sprintf("Movie %d", tmdbID), Year: 2021}, nil
}

func (f *fakeLibrary) Add(_ context.Context, req ports.AddRequest) (ports.MovieResource, error) {
	if err := f.addErrs[req.Movie.TmdbID]; err != nil {
		return ports.MovieResource{}, err
	}
	f.added = append(f.added, req)
	return req.Movie, nil
}

func defaultLibrary() *fakeLibrary {
	return &fakeLibrary{
		profiles: []ports.QualityProfile{{ID: 4, Name: "HD-1080p"}, {ID: 6, Name: "Ultra-HD"}},
		roots:    []string{"/movies"},
	}
}

func defaultCriteria() criteria.Criteria {
	return criteria.FromConfig(config.DiscoveryConfig{
		OriginalLanguage: "ko",
		IncludeGenreIDs:  []int{27, 53},
		MinVoteAverage:   7.0,
		MinVoteCount:     150,
		YearFrom:         2000,
		YearTo:           2024,
	})
}

func movieA() domain.Movie {
	return domain.Movie{
		TmdbID:           101,
		Title:            "A",
		OriginalLanguage: "ko",
		GenreIDs:         []int{27},
		VoteAverage:      7.5,
		VoteCount:        200,
		ReleaseDate:      "2021-01-01",
	}
}

func newPipeline(source ports.CandidateSource, library ports.Library, add config.AddConfig, out *bytes.Buffer) *usecase.Pipeline {
	if out == nil {
		out = &bytes.Buffer{}
	}
	return usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Library:  library,
		Criteria: defaultCriteria(),
		Add:      add,
		Reporter: report.New(out),
	})
}

func TestRunFiltersAndReconciles(t *testing.T) {
	t.Parallel()

	a := movieA()
	b := domain.Movie{TmdbID: 102, Title: "B", OriginalLanguage: "ko", GenreIDs: []int{18}, VoteAverage: 8.0, VoteCount: 500, ReleaseDate: "2020-03-05"}
	c := domain.Movie{TmdbID: 103, Title: "C", OriginalLanguage: "en", GenreIDs: []int{27}, VoteAverage: 9.0, VoteCount: 1000, ReleaseDate: "2022-08-08"}

	library := defaultLibrary()
	library.movies = []domain.LibraryMovie{{ID: 1, TmdbID: a.TmdbID}}

	source := &fakeSource{movies: []domain.Movie{a, b, c}}
	pipeline := newPipeline(source, library, config.AddConfig{}, nil)

	summary, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Scanned != 3 {
		t.Fatalf("Scanned = %d, want 3", summary.Scanned)
	}
	if summary.Matched != 1 {
		t.Fatalf("Matched = %d, want 1 (B fails genre, C fails language)", summary.Matched)
	}
	if summary.InLibrary != 1 {
		t.Fatalf("InLibrary = %d, want 1", summary.InLibrary)
	}
	if summary.Added != 0 || len(library.added) != 0 {
		t.Fatalf("expected zero commits, got summary %+v, adds %+v", summary, library.added)
	}
}

func TestRunCommitsSingleCandidate(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	library.tags = []ports.Tag{{ID: 9, Label: "korean"}}

	source := &fakeSource{movies: []domain.Movie{movieA()}}
	add := config.AddConfig{
		QualityProfile:      "HD-1080p",
		Tags:                "korean",
		Monitored:           true,
		SearchOnAdd:         true,
		MinimumAvailability: "released",
	}

	summary, err := newPipeline(source, library, add, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Added != 1 || len(library.added) != 1 {
		t.Fatalf("expected one commit, got summary %+v", summary)
	}

	req := library.added[0]
	if req.Movie.TmdbID != 101 {
		t.Fatalf("unexpected movie: %+v", req.Movie)
	}
	if req.QualityProfileID != 4 {
		t.Fatalf("profile not resolved by name, got %d", req.QualityProfileID)
	}
	if len(req.TagIDs) != 1 || req.TagIDs[0] != 9 {
		t.Fatalf("tags not resolved, got %v", req.TagIDs)
	}
	if req.RootFolder != "/movies" {
		t.Fatalf("root folder not defaulted, got %q", req.RootFolder)
	}
	if !req.Monitored || !req.SearchOnAdd || req.MinimumAvailability != "released" {
		t.Fatalf("add settings not carried: %+v", req)
	}
}

func TestRunDryRunIssuesNoAdds(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	source := &fakeSource{movies: []domain.Movie{movieA()}}

	var out bytes.Buffer
	summary, err := newPipeline(source, library, config.AddConfig{DryRun: true}, &out).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(library.added) != 0 {
		t.Fatalf("dry run must not call Add, got %+v", library.added)
	}
	if summary.Added != 1 {
		t.Fatalf("dry run should still count the intended add, got %+v", summary)
	}
	if !strings.Contains(out.String(), "[dry-run] would add: Movie 101") {
		t.Fatalf("missing dry-run report line:\n%s", out.String())
	}
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	source := &fakeSource{movies: []domain.Movie{movieA()}}
	add := config.AddConfig{}

	first, err := newPipeline(source, library, add, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Added != 1 {
		t.Fatalf("first run should add, got %+v", first)
	}

	// The library now contains everything run one committed.
	for _, req := range library.added {
		library.movies = append(library.movies, domain.LibraryMovie{ID: 50, TmdbID: req.Movie.TmdbID})
	}
	library.added = nil

	second, err := newPipeline(source, library, add, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Added != 0 || len(library.added) != 0 {
		t.Fatalf("second run should commit nothing, got %+v", second)
	}
	if second.InLibrary != 1 {
		t.Fatalf("expected candidate excluded by dedup, got %+v", second)
	}
}

func TestRunSuppressesDuplicateCatalogIDs(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	source := &fakeSource{movies: []domain.Movie{movieA(), movieA()}}

	summary, err := newPipeline(source, library, config.AddConfig{}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Duplicates != 1 {
		t.Fatalf("Duplicates = %d, want 1", summary.Duplicates)
	}
	if len(library.added) != 1 {
		t.Fatalf("expected exactly one commit, got %d", len(library.added))
	}
}

func TestRunCreatesMissingTagsOnce(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	library.tags = []ports.Tag{{ID: 9, Label: "korean"}}

	two := movieA()
	two.TmdbID = 202
	source := &fakeSource{movies: []domain.Movie{movieA(), two}}
	add := config.AddConfig{Tags: "korean, horror, horror, 5"}

	_, err := newPipeline(source, library, add, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(library.createdTags) != 1 || library.createdTags[0] != "horror" {
		t.Fatalf("expected exactly one CreateTag for %q, got %v", "horror", library.createdTags)
	}

	want := []int{9, 101, 5}
	for _, req := range library.added {
		if len(req.TagIDs) != len(want) {
			t.Fatalf("TagIDs = %v, want %v", req.TagIDs, want)
		}
		for i := range want {
			if req.TagIDs[i] != want[i] {
				t.Fatalf("TagIDs = %v, want %v", req.TagIDs, want)
			}
		}
	}
}

func TestRunUnknownProfileNameIsFatal(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	source := &fakeSource{movies: []domain.Movie{movieA()}}
	add := config.AddConfig{QualityProfile: "Missing"}

	_, err := newPipeline(source, library, add, nil).Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal error for unknown profile name")
	}
	if len(library.added) != 0 {
		t.Fatalf("no commits may be attempted after fatal resolution, got %+v", library.added)
	}
}

func TestRunProfileNameMatchIsCaseSensitive(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	source := &fakeSource{movies: []domain.Movie{movieA()}}
	add := config.AddConfig{QualityProfile: "hd-1080p"}

	if _, err := newPipeline(source, library, add, nil).Run(context.Background()); err == nil {
		t.Fatal("expected case-mismatched profile name to fail")
	}
}

func TestRunNumericProfileUsedDirectly(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	source := &fakeSource{movies: []domain.Movie{movieA()}}
	add := config.AddConfig{QualityProfile: "42"}

	_, err := newPipeline(source, library, add, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(library.added) != 1 || library.added[0].QualityProfileID != 42 {
		t.Fatalf("expected profile id 42, got %+v", library.added)
	}
}

func TestRunLookupNotFoundSkipsCandidate(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	library.lookupErrs = map[int]error{101: ports.ErrNotFound}

	two := movieA()
	two.TmdbID = 202
	source := &fakeSource{movies: []domain.Movie{movieA(), two}}

	summary, err := newPipeline(source, library, config.AddConfig{}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Skipped != 1 || summary.Added != 1 {
		t.Fatalf("expected one skip and one add, got %+v", summary)
	}
}

func TestRunCommitFailureContinues(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	library.addErrs = map[int]error{101: errors.New("already added")}

	two := movieA()
	two.TmdbID = 202
	source := &fakeSource{movies: []domain.Movie{movieA(), two}}

	summary, err := newPipeline(source, library, config.AddConfig{}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("per-candidate commit failure must not fail the run: %v", err)
	}
	if summary.Failed != 1 || summary.Added != 1 {
		t.Fatalf("expected one failure and one add, got %+v", summary)
	}
}

func TestRunScanFailureIsFatal(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("page 2 unreachable")}
	library := defaultLibrary()

	if _, err := newPipeline(source, library, config.AddConfig{}, nil).Run(context.Background()); err == nil {
		t.Fatal("expected scan failure to abort the run")
	}
	if len(library.added) != 0 {
		t.Fatal("no commits may follow a scan abort")
	}
}

func TestRunLibraryFetchFailureIsFatal(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	library.moviesErr = errors.New("connection refused")
	source := &fakeSource{movies: []domain.Movie{movieA()}}

	if _, err := newPipeline(source, library, config.AddConfig{}, nil).Run(context.Background()); err == nil {
		t.Fatal("expected library fetch failure to abort the run")
	}
	if len(library.added) != 0 {
		t.Fatal("no commits may follow a reconciliation failure")
	}
}

func TestRunReportNamesEveryCommittedCandidate(t *testing.T) {
	t.Parallel()

	library := defaultLibrary()
	two := movieA()
	two.TmdbID = 202
	source := &fakeSource{movies: []domain.Movie{movieA(), two}}

	var out bytes.Buffer
	if _, err := newPipeline(source, library, config.AddConfig{}, &out).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, want := range []string{"tmdbId=101", "tmdbId=202", "added: Movie 101", "added: Movie 202"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, out.String())
		}
	}
}
