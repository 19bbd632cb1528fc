package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"MovieScanner/internal/app"
	"MovieScanner/internal/config"
	"MovieScanner/internal/logging"
)

var flags struct {
	dryRun          bool
	tags            string
	qualityProfile  string
	rootFolder      string
	lang            string
	genres          string
	minVoteAvg      float64
	minVoteCount    int
	yearFrom        int
	yearTo          int
	maxPages        int
	monitored       bool
	searchOnAdd     bool
	minAvailability string
	logLevel        string
}

var rootCmd = &cobra.Command{
	Use:   "moviescanner",
	Short: "Discover movies from TMDb and add missing ones to Radarr",
	Long: "moviescanner runs the discovery pipeline once: it scans the TMDb discover\n" +
		"endpoint page by page, filters candidates by language, genre, votes, and\n" +
		"release year, drops everything Radarr already tracks, and adds the rest.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&flags.dryRun, "dry-run", false, "print what would be added without adding to Radarr")
	f.StringVar(&flags.tags, "tags", "", "comma-separated Radarr tag names or IDs")
	f.StringVar(&flags.qualityProfile, "quality-profile", "", "quality profile name or ID (default: Radarr's first profile)")
	f.StringVar(&flags.rootFolder, "root-folder", "", "root folder path (default: Radarr's first root folder)")
	f.StringVar(&flags.lang, "lang", "", "TMDb original language code")
	f.StringVar(&flags.genres, "genres", "", "comma-separated TMDb genre IDs")
	f.Float64Var(&flags.minVoteAvg, "min-vote-avg", 0, "minimum vote average")
	f.IntVar(&flags.minVoteCount, "min-vote-count", 0, "minimum vote count")
	f.IntVar(&flags.yearFrom, "year-from", 0, "earliest release year (inclusive)")
	f.IntVar(&flags.yearTo, "year-to", 0, "latest release year (inclusive)")
	f.IntVar(&flags.maxPages, "max-pages", 0, "maximum discover pages to fetch")
	f.BoolVar(&flags.monitored, "monitored", true, "add movies as monitored")
	f.BoolVar(&flags.searchOnAdd, "search-on-add", true, "trigger a search after adding")
	f.StringVar(&flags.minAvailability, "minimum-availability", "", "minimum availability for added movies")
	f.StringVar(&flags.logLevel, "log-level", "", "log verbosity (debug, info, warn, error)")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		return err
	}
	return nil
}

// applyFlags layers explicitly-set flags over the loaded configuration, so
// precedence stays defaults < file < environment < flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("dry-run") {
		cfg.Add.DryRun = flags.dryRun
	}
	if changed("tags") {
		cfg.Add.Tags = flags.tags
	}
	if changed("quality-profile") {
		cfg.Add.QualityProfile = flags.qualityProfile
	}
	if changed("root-folder") {
		cfg.Add.RootFolder = flags.rootFolder
	}
	if changed("monitored") {
		cfg.Add.Monitored = flags.monitored
	}
	if changed("search-on-add") {
		cfg.Add.SearchOnAdd = flags.searchOnAdd
	}
	if changed("minimum-availability") {
		cfg.Add.MinimumAvailability = flags.minAvailability
	}

	if changed("lang") {
		cfg.Discovery.OriginalLanguage = flags.lang
	}
	if changed("genres") {
		if ids, err := config.ParseIntList(flags.genres); err != nil {
			fmt.Fprintf(os.Stderr, "warning: ignoring invalid --genres %q: %v\n", flags.genres, err)
		} else {
			cfg.Discovery.IncludeGenreIDs = ids
		}
	}
	if changed("min-vote-avg") {
		cfg.Discovery.MinVoteAverage = flags.minVoteAvg
	}
	if changed("min-vote-count") {
		cfg.Discovery.MinVoteCount = flags.minVoteCount
	}
	if changed("year-from") {
		cfg.Discovery.YearFrom = flags.yearFrom
	}
	if changed("year-to") {
		cfg.Discovery.YearTo = flags.yearTo
	}
	if changed("max-pages") {
		cfg.Discovery.MaxPages = flags.maxPages
	}

	if changed("log-level") && strings.TrimSpace(flags.logLevel) != "" {
		cfg.Logging.Level = flags.logLevel
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
