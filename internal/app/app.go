package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"MovieScanner/internal/config"
	"MovieScanner/internal/criteria"
	"MovieScanner/internal/infrastructure/radarr"
	"MovieScanner/internal/infrastructure/tmdb"
	"MovieScanner/internal/logging"
	"MovieScanner/internal/report"
	"MovieScanner/internal/scanner"
	"MovieScanner/internal/usecase"
)

// Application wires configs to the pipeline and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New builds a runnable application instance. Every run carries a run_id
// log attribute so batch invocations can be told apart in aggregated logs.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	logger := baseLogger.With("run_id", uuid.NewString())

	catalog, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, tmdb.DiscoverOptions{
		OriginalLanguage: cfg.Discovery.OriginalLanguage,
		GenreIDs:         cfg.Discovery.IncludeGenreIDs,
		MinVoteAverage:   cfg.Discovery.MinVoteAverage,
		MinVoteCount:     cfg.Discovery.MinVoteCount,
		YearFrom:         cfg.Discovery.YearFrom,
		YearTo:           cfg.Discovery.YearTo,
	})
	if err != nil {
		return nil, fmt.Errorf("build tmdb client: %w", err)
	}

	library, err := radarr.New(cfg.Radarr.URL, cfg.Radarr.APIKey)
	if err != nil {
		return nil, fmt.Errorf("build radarr client: %w", err)
	}

	source := scanner.New(catalog, cfg.Discovery.MaxPages, logger.With("component", "scanner"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Library:  library,
		Criteria: criteria.FromConfig(cfg.Discovery),
		Add:      cfg.Add,
		Reporter: report.New(os.Stdout),
		Logger:   logger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, logger: logger}, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	summary, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("run complete",
		"scanned", summary.Scanned,
		"matched", summary.Matched,
		"in_library", summary.InLibrary,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"added", summary.Added,
		"dry_run", summary.DryRun,
	)
	return nil
}
