package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"MovieScanner/internal/config"
	"MovieScanner/internal/criteria"
	"MovieScanner/internal/domain"
	"MovieScanner/internal/ports"
	"MovieScanner/internal/report"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.CandidateSource
	Library  ports.Library
	Criteria criteria.Criteria
	Add      config.AddConfig
	Reporter *report.Reporter
	Logger   *slog.Logger
}

// Pipeline implements the discover-filter-reconcile-commit workflow.
type Pipeline struct {
	source   ports.CandidateSource
	library  ports.Library
	criteria criteria.Criteria
	add      config.AddConfig
	reporter *report.Reporter
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:   deps.Source,
		library:  deps.Library,
		criteria: deps.Criteria,
		add:      deps.Add,
		reporter: deps.Reporter,
		logger:   deps.Logger,
	}
}

// Run executes one pipeline pass: scan the catalog, filter candidates,
// reconcile against the library, and commit the remainder. A returned error
// is stage-fatal; per-candidate lookup and add failures are logged and
// counted but do not abort the run.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{DryRun: p.add.DryRun}

	movies, err := p.source.Scan(ctx)
	if err != nil {
		return summary, fmt.Errorf("scan catalog: %w", err)
	}
	summary.Scanned = len(movies)
	p.info("catalog scanned", "candidates", len(movies))

	var matched []domain.Movie
	for _, movie := range movies {
		if p.criteria.Matches(movie) {
			matched = append(matched, movie)
		}
	}
	summary.Matched = len(matched)

	existing, err := p.libraryIDSet(ctx)
	if err != nil {
		return summary, fmt.Errorf("load library: %w", err)
	}
	p.info("library loaded", "movies", len(existing))

	seen := make(map[int]struct{}, len(matched))
	var toAdd []domain.Movie
	for _, movie := range matched {
		if _, dup := seen[movie.TmdbID]; dup {
			summary.Duplicates++
			continue
		}
		seen[movie.TmdbID] = struct{}{}

		if _, ok := existing[movie.TmdbID]; ok {
			summary.InLibrary++
			continue
		}
		toAdd = append(toAdd, movie)
	}
	p.info("reconciled", "to_add", len(toAdd), "in_library", summary.InLibrary, "duplicates", summary.Duplicates)

	plan, err := p.resolvePlan(ctx)
	if err != nil {
		return summary, fmt.Errorf("resolve add plan: %w", err)
	}
	if p.reporter != nil {
		p.reporter.Plan(plan)
	}

	for _, movie := range toAdd {
		if p.reporter != nil {
			p.reporter.Candidate(movie)
		}

		resource, err := p.library.Lookup(ctx, movie.TmdbID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				p.warn("lookup returned no record, skipping", "tmdb_id", movie.TmdbID, "title", movie.DisplayTitle())
				summary.Skipped++
				continue
			}
			p.error("lookup failed", "tmdb_id", movie.TmdbID, "error", err)
			summary.Failed++
			continue
		}

		if plan.DryRun {
			if p.reporter != nil {
				p.reporter.WouldAdd(resource, plan)
			}
			summary.Added++
			continue
		}

		added, err := p.library.Add(ctx, ports.AddRequest{
			Movie:               resource,
			RootFolder:          plan.RootFolder,
			QualityProfileID:    plan.QualityProfileID,
			TagIDs:              plan.TagIDs,
			Monitored:           plan.Monitored,
			SearchOnAdd:         plan.SearchOnAdd,
			MinimumAvailability: plan.MinimumAvailability,
		})
		if err != nil {
			p.error("add rejected", "tmdb_id", movie.TmdbID, "title", resource.Title, "error", err)
			summary.Failed++
			continue
		}

		if p.reporter != nil {
			p.reporter.Added(added)
		}
		summary.Added++
	}

	if p.reporter != nil {
		p.reporter.Summary(summary)
	}

	return summary, nil
}

func (p *Pipeline) libraryIDSet(ctx context.Context) (map[int]struct{}, error) {
	movies, err := p.library.Movies(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[int]struct{}, len(movies))
	for _, movie := range movies {
		if movie.TmdbID > 0 {
			ids[movie.TmdbID] = struct{}{}
		}
	}
	return ids, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
