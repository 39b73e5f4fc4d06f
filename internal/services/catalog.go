package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const trackSelect = "id,title,duration,explicit,status,audio_url,release:releases(title,artist_name,cover_art_url)"

type release struct {
	Title       string `json:"title"`
	ArtistName  string `json:"artist_name"`
	CoverArtURL string `json:"cover_art_url"`
}

// CatalogTrack is a row of the hosted tracks table with its release embedded.
type CatalogTrack struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Duration float64  `json:"duration"`
	Explicit bool     `json:"explicit"`
	Status   string   `json:"status"`
	AudioURL string   `json:"audio_url"`
	Release  *release `json:"release"`
}

// Track maps the row to a [models.Track]; artist and artwork come from the release.
func (c CatalogTrack) Track() models.Track {
	t := models.Track{
		ID:       c.ID,
		Title:    c.Title,
		AudioURL: c.AudioURL,
		Duration: int(c.Duration + 0.5),
		Explicit: c.Explicit,
		Status:   c.Status,
	}
	if c.Release != nil {
		t.Artist = c.Release.ArtistName
		t.ArtworkURL = c.Release.CoverArtURL
	}
	return t
}

// CatalogOpts configures a [CatalogService].
type CatalogOpts struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client // base transport; wrapped with the bearer token source
}

// CatalogService implements [Catalog] against the hosted REST endpoint.
type CatalogService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

var _ Catalog = (*CatalogService)(nil)

// NewCatalogService creates a catalog client. An empty API key is rejected.
func NewCatalogService(opts CatalogOpts) (*CatalogService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: catalog api_key", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "http://127.0.0.1:54321/rest/v1"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.APIKey, TokenType: "Bearer"})

	return &CatalogService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: oauth2.NewClient(ctx, ts),
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    opts.Timeout,
	}, nil
}

// ListTracks returns tracks filtered by status, newest first.
func (c *CatalogService) ListTracks(ctx context.Context, statuses ...string) ([]models.Track, error) {
	q := url.Values{}
	q.Set("select", trackSelect)
	q.Set("order", "created_at.desc")
	if len(statuses) > 0 {
		q.Set("status", "in.("+strings.Join(statuses, ",")+")")
	}

	var rows []CatalogTrack
	if err := c.doRequest(ctx, "/tracks", q, &rows); err != nil {
		return nil, err
	}
	return toTracks(rows), nil
}

// GetTracks resolves ids in order. Unknown ids are skipped.
func (c *CatalogService) GetTracks(ctx context.Context, ids []string) ([]models.Track, error) {
	if len(ids) == 0 {
		return []models.Track{}, nil
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
	}

	q := url.Values{}
	q.Set("select", trackSelect)
	q.Set("id", "in.("+strings.Join(quoted, ",")+")")

	var rows []CatalogTrack
	if err := c.doRequest(ctx, "/tracks", q, &rows); err != nil {
		return nil, err
	}

	byID := make(map[string]models.Track, len(rows))
	for _, t := range toTracks(rows) {
		byID[t.ID] = t
	}

	tracks := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// doRequest performs a rate-limited, authenticated GET and decodes the JSON body into result.
func (c *CatalogService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", shared.ErrTimeout, endpoint)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func toTracks(rows []CatalogTrack) []models.Track {
	tracks := make([]models.Track, len(rows))
	for i, row := range rows {
		tracks[i] = row.Track()
	}
	return tracks
}
