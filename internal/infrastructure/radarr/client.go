package radarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MovieScanner/internal/domain"
	"MovieScanner/internal/ports"
)

// Client talks to the Radarr v3 API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Library = (*Client)(nil)

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

// New creates a Radarr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("radarr url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("radarr api key required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type movieRecord struct {
	ID     int    `json:"id"`
	TmdbID int    `json:"tmdbId"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
}

// Movies lists every movie the manager already tracks.
func (c *Client) Movies(ctx context.Context) ([]domain.LibraryMovie, error) {
	var records []movieRecord
	if err := c.get(ctx, "/api/v3/movie", nil, &records); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	movies := make([]domain.LibraryMovie, 0, len(records))
	for _, rec := range records {
		movies = append(movies, domain.LibraryMovie{ID: rec.ID, TmdbID: rec.TmdbID})
	}
	return movies, nil
}

type qualityProfileRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// QualityProfiles lists the manager's quality profiles.
func (c *Client) QualityProfiles(ctx context.Context) ([]ports.QualityProfile, error) {
	var records []qualityProfileRecord
	if err := c.get(ctx, "/api/v3/qualityprofile", nil, &records); err != nil {
		return nil, fmt.Errorf("list quality profiles: %w", err)
	}

	profiles := make([]ports.QualityProfile, 0, len(records))
	for _, rec := range records {
		profiles = append(profiles, ports.QualityProfile{ID: rec.ID, Name: rec.Name})
	}
	return profiles, nil
}

type rootFolderRecord struct {
	Path string `json:"path"`
}

// RootFolders lists the configured root folder paths in manager order.
func (c *Client) RootFolders(ctx context.Context) ([]string, error) {
	var records []rootFolderRecord
	if err := c.get(ctx, "/api/v3/rootfolder", nil, &records); err != nil {
		return nil, fmt.Errorf("list root folders: %w", err)
	}

	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.Path)
	}
	return paths, nil
}

type tagRecord struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Tags lists the manager's registered tags.
func (c *Client) Tags(ctx context.Context) ([]ports.Tag, error) {
	var records []tagRecord
	if err := c.get(ctx, "/api/v3/tag", nil, &records); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	tags := make([]ports.Tag, 0, len(records))
	for _, rec := range records {
		tags = append(tags, ports.Tag{ID: rec.ID, Label: rec.Label})
	}
	return tags, nil
}

// CreateTag registers a new tag and returns it with its assigned ID.
func (c *Client) CreateTag(ctx context.Context, label string) (ports.Tag, error) {
	var created tagRecord
	if err := c.post(ctx, "/api/v3/tag", tagRecord{Label: label}, &created); err != nil {
		return ports.Tag{}, fmt.Errorf("create tag %q: %w", label, err)
	}
	return ports.Tag{ID: created.ID, Label: created.Label}, nil
}

// Lookup fetches the manager-native record for a catalog ID. It returns
// ports.ErrNotFound when the manager cannot resolve the ID.
func (c *Client) Lookup(ctx context.Context, tmdbID int) (ports.MovieResource, error) {
	params := url.Values{}
	params.Set("tmdbId", strconv.Itoa(tmdbID))

	var record movieRecord
	err := c.get(ctx, "/api/v3/movie/lookup/tmdb", params, &record)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.MovieResource{}, ports.ErrNotFound
		}
		return ports.MovieResource{}, fmt.Errorf("lookup tmdb %d: %w", tmdbID, err)
	}
	if record.TmdbID == 0 {
		return ports.MovieResource{}, ports.ErrNotFound
	}
	return ports.MovieResource{TmdbID: record.TmdbID, Title: record.Title, Year: record.Year}, nil
}

type addOptions struct {
	SearchForMovie bool `json:"searchForMovie"`
}

type addMoviePayload struct {
	TmdbID              int        `json:"tmdbId"`
	Title               string     `json:"title"`
	Year                int        `json:"year,omitempty"`
	QualityProfileID    int        `json:"qualityProfileId"`
	RootFolderPath      string     `json:"rootFolderPath"`
	Monitored           bool       `json:"monitored"`
	MinimumAvailability string     `json:"minimumAvailability"`
	Tags                []int      `json:"tags,omitempty"`
	AddOptions          addOptions `json:"addOptions"`
}

// Add issues the add-movie command and returns the created record.
func (c *Client) Add(ctx context.Context, req ports.AddRequest) (ports.MovieResource, error) {
	payload := addMoviePayload{
		TmdbID:              req.Movie.TmdbID,
		Title:               req.Movie.Title,
		Year:                req.Movie.Year,
		QualityProfileID:    req.QualityProfileID,
		RootFolderPath:      req.RootFolder,
		Monitored:           req.Monitored,
		MinimumAvailability: req.MinimumAvailability,
		Tags:                req.TagIDs,
		AddOptions:          addOptions{SearchForMovie: req.SearchOnAdd},
	}

	var created movieRecord
	if err := c.post(ctx, "/api/v3/movie", payload, &created); err != nil {
		return ports.MovieResource{}, fmt.Errorf("add movie tmdb %d: %w", req.Movie.TmdbID, err)
	}
	return ports.MovieResource{TmdbID: created.TmdbID, Title: created.Title, Year: created.Year}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	return c.do(req, v)
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, v)
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ports.ErrNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("radarr returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
