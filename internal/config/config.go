package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "MOVIE_SCANNER_CONFIG"

	tmdbAPIKeyEnv = "TMDB_API_KEY"

	radarrURLEnv        = "RADARR_URL"
	radarrAPIKeyEnv     = "RADARR_API_KEY"
	radarrRootFolderEnv = "RADARR_ROOT_FOLDER"
	radarrQualityEnv    = "RADARR_QUALITY_PROFILE"
	radarrTagsEnv       = "RADARR_TAGS"
	originalLanguageEnv = "ORIGINAL_LANGUAGE"
	includeGenreIDsEnv  = "INCLUDE_GENRE_IDS"
	minVoteAvgEnv       = "MIN_VOTE_AVG"
	minVoteCountEnv     = "MIN_VOTE_COUNT"
	yearFromEnv         = "YEAR_FROM"
	yearToEnv           = "YEAR_TO"
	maxPagesEnv         = "MAX_PAGES"
	monitoredEnv        = "MONITORED"
	searchOnAddEnv      = "SEARCH_ON_ADD"
	minAvailabilityEnv  = "MINIMUM_AVAILABILITY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	TMDB      TMDBConfig      `yaml:"tmdb"`
	Radarr    RadarrConfig    `yaml:"radarr"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Add       AddConfig       `yaml:"add"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TMDBConfig describes how to reach the metadata catalog.
type TMDBConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
}

// RadarrConfig describes how to reach the library manager.
type RadarrConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
}

// DiscoveryConfig defines the candidate filter applied to catalog entries.
type DiscoveryConfig struct {
	OriginalLanguage string  `yaml:"originalLanguage"`
	IncludeGenreIDs  []int   `yaml:"includeGenreIds"`
	MinVoteAverage   float64 `yaml:"minVoteAverage"`
	MinVoteCount     int     `yaml:"minVoteCount"`
	YearFrom         int     `yaml:"yearFrom"`
	YearTo           int     `yaml:"yearTo"`
	MaxPages         int     `yaml:"maxPages"`
}

// AddConfig defines how surviving candidates are registered with the manager.
type AddConfig struct {
	RootFolder          string `yaml:"rootFolder"`
	QualityProfile      string `yaml:"qualityProfile"`
	Tags                string `yaml:"tags"`
	Monitored           bool   `yaml:"monitored"`
	SearchOnAdd         bool   `yaml:"searchOnAdd"`
	MinimumAvailability string `yaml:"minimumAvailability"`
	DryRun              bool   `yaml:"dryRun"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

// Validate reports misconfiguration that would make any run fail.
func (c Config) Validate() error {
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		return fmt.Errorf("tmdb api key is required (set %s)", tmdbAPIKeyEnv)
	}
	if strings.TrimSpace(c.Radarr.URL) == "" {
		return fmt.Errorf("radarr url is required (set %s)", radarrURLEnv)
	}
	if strings.TrimSpace(c.Radarr.APIKey) == "" {
		return fmt.Errorf("radarr api key is required (set %s)", radarrAPIKeyEnv)
	}
	if strings.TrimSpace(c.Discovery.OriginalLanguage) == "" {
		return fmt.Errorf("discovery.originalLanguage is required")
	}
	if c.Discovery.MaxPages < 1 {
		return fmt.Errorf("discovery.maxPages must be at least 1, got %d", c.Discovery.MaxPages)
	}
	if c.Discovery.YearFrom > c.Discovery.YearTo {
		return fmt.Errorf("discovery.yearFrom %d is after yearTo %d", c.Discovery.YearFrom, c.Discovery.YearTo)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(tmdbAPIKeyEnv); v != "" {
		c.TMDB.APIKey = v
	}

	if v := os.Getenv(radarrURLEnv); v != "" {
		c.Radarr.URL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(radarrAPIKeyEnv); v != "" {
		c.Radarr.APIKey = v
	}
	if v := os.Getenv(radarrRootFolderEnv); v != "" {
		c.Add.RootFolder = v
	}
	if v := os.Getenv(radarrQualityEnv); v != "" {
		c.Add.QualityProfile = v
	}
	if v := os.Getenv(radarrTagsEnv); v != "" {
		c.Add.Tags = v
	}

	if v := os.Getenv(originalLanguageEnv); v != "" {
		c.Discovery.OriginalLanguage = v
	}
	if v := os.Getenv(includeGenreIDsEnv); v != "" {
		if ids, err := ParseIntList(v); err != nil {
			log.Printf("config: invalid %s %q: %v (keeping previous value)", includeGenreIDsEnv, v, err)
		} else {
			c.Discovery.IncludeGenreIDs = ids
		}
	}
	if v := os.Getenv(minVoteAvgEnv); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Discovery.MinVoteAverage = f
		}
	}
	if v := os.Getenv(minVoteCountEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Discovery.MinVoteCount = n
		}
	}
	if v := os.Getenv(yearFromEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Discovery.YearFrom = n
		}
	}
	if v := os.Getenv(yearToEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Discovery.YearTo = n
		}
	}
	if v := os.Getenv(maxPagesEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Discovery.MaxPages = n
		}
	}

	if v := os.Getenv(monitoredEnv); v != "" {
		c.Add.Monitored = v == "true"
	}
	if v := os.Getenv(searchOnAddEnv); v != "" {
		c.Add.SearchOnAdd = v == "true"
	}
	if v := os.Getenv(minAvailabilityEnv); v != "" {
		c.Add.MinimumAvailability = v
	}
}

// ParseIntList splits a comma-separated list of integers, skipping blanks.
func ParseIntList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SplitList splits a comma-separated list of strings, skipping blanks.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.TMDB.APIKey != "" {
		base.TMDB.APIKey = override.TMDB.APIKey
	}
	if override.TMDB.BaseURL != "" {
		base.TMDB.BaseURL = override.TMDB.BaseURL
	}

	if override.Radarr.URL != "" {
		base.Radarr.URL = strings.TrimRight(override.Radarr.URL, "/")
	}
	if override.Radarr.APIKey != "" {
		base.Radarr.APIKey = override.Radarr.APIKey
	}

	if override.Discovery.OriginalLanguage != "" {
		base.Discovery.OriginalLanguage = override.Discovery.OriginalLanguage
	}
	if len(override.Discovery.IncludeGenreIDs) > 0 {
		base.Discovery.IncludeGenreIDs = override.Discovery.IncludeGenreIDs
	}
	if override.Discovery.MinVoteAverage > 0 {
		base.Discovery.MinVoteAverage = override.Discovery.MinVoteAverage
	}
	if override.Discovery.MinVoteCount > 0 {
		base.Discovery.MinVoteCount = override.Discovery.MinVoteCount
	}
	if override.Discovery.YearFrom > 0 {
		base.Discovery.YearFrom = override.Discovery.YearFrom
	}
	if override.Discovery.YearTo > 0 {
		base.Discovery.YearTo = override.Discovery.YearTo
	}
	if override.Discovery.MaxPages > 0 {
		base.Discovery.MaxPages = override.Discovery.MaxPages
	}

	if override.Add.RootFolder != "" {
		base.Add.RootFolder = override.Add.RootFolder
	}
	if override.Add.QualityProfile != "" {
		base.Add.QualityProfile = override.Add.QualityProfile
	}
	if override.Add.Tags != "" {
		base.Add.Tags = override.Add.Tags
	}
	if override.Add.MinimumAvailability != "" {
		base.Add.MinimumAvailability = override.Add.MinimumAvailability
	}
	if override.Add.Monitored {
		base.Add.Monitored = true
	}
	if override.Add.SearchOnAdd {
		base.Add.SearchOnAdd = true
	}
	if override.Add.DryRun {
		base.Add.DryRun = true
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		TMDB: TMDBConfig{
			BaseURL: "https://api.themoviedb.org/3",
		},
		Discovery: DiscoveryConfig{
			OriginalLanguage: "ko",
			IncludeGenreIDs:  []int{27, 53},
			MinVoteAverage:   7.0,
			MinVoteCount:     150,
			YearFrom:         2000,
			YearTo:           time.Now().UTC().Year(),
			MaxPages:         3,
		},
		Add: AddConfig{
			Monitored:           true,
			SearchOnAdd:         true,
			MinimumAvailability: "released",
		},
	}
}
