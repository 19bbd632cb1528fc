package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MovieScanner/internal/domain"
	"MovieScanner/internal/ports"
)

// DiscoverOptions carries the query hints forwarded to the discover endpoint.
// The client-side filter remains authoritative; these only reduce traffic.
type DiscoverOptions struct {
	OriginalLanguage string
	GenreIDs         []int
	MinVoteAverage   float64
	MinVoteCount     int
	YearFrom         int
	YearTo           int
}

type movieEntry struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	ReleaseDate      string  `json:"release_date"`
}

type discoverResponse struct {
	Page         int          `json:"page"`
	Results      []movieEntry `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

// Client provides access to the TMDB discover API.
type Client struct {
	apiKey     string
	baseURL    string
	opts       DiscoverOptions
	httpClient *http.Client
}

var _ ports.Catalog = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client bound to one set of discover hints.
func New(apiKey, baseURL string, discover DiscoverOptions, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       discover,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Discover fetches one page of discovery results sorted by release date.
func (c *Client) Discover(ctx context.Context, page int) (ports.DiscoverPage, error) {
	if page < 1 {
		return ports.DiscoverPage{}, errors.New("page must be positive")
	}
	endpoint, err := url.Parse(c.baseURL + "/discover/movie")
	if err != nil {
		return ports.DiscoverPage{}, fmt.Errorf("parse tmdb url: %w", err)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "primary_release_date.desc")
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	if c.opts.OriginalLanguage != "" {
		params.Set("with_original_language", c.opts.OriginalLanguage)
	}
	if len(c.opts.GenreIDs) > 0 {
		params.Set("with_genres", joinIDs(c.opts.GenreIDs))
	}
	if c.opts.MinVoteAverage > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(c.opts.MinVoteAverage, 'f', -1, 64))
	}
	if c.opts.MinVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(c.opts.MinVoteCount))
	}
	if c.opts.YearFrom > 0 {
		params.Set("primary_release_date.gte", fmt.Sprintf("%04d-01-01", c.opts.YearFrom))
	}
	if c.opts.YearTo > 0 {
		params.Set("primary_release_date.lte", fmt.Sprintf("%04d-12-31", c.opts.YearTo))
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return ports.DiscoverPage{}, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return ports.DiscoverPage{}, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.DiscoverPage{}, fmt.Errorf("tmdb discover returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload discoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ports.DiscoverPage{}, fmt.Errorf("decode tmdb response: %w", err)
	}

	movies := make([]domain.Movie, 0, len(payload.Results))
	for _, entry := range payload.Results {
		movies = append(movies, domain.Movie{
			TmdbID:           entry.ID,
			Title:            entry.Title,
			OriginalTitle:    entry.OriginalTitle,
			OriginalLanguage: entry.OriginalLanguage,
			GenreIDs:         entry.GenreIDs,
			VoteAverage:      entry.VoteAverage,
			VoteCount:        entry.VoteCount,
			ReleaseDate:      entry.ReleaseDate,
		})
	}

	return ports.DiscoverPage{
		Movies:     movies,
		Page:       payload.Page,
		TotalPages: payload.TotalPages,
	}, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}
