package inat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fennwick/carrionwatch/internal/domain"
)

// perPageCap is the API's maximum page size.
const perPageCap = 200

// qualityGrade is fixed: only community-verified records enter the pipeline.
const qualityGrade = "research"

// Client fetches observation records from an iNaturalist-style API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates an observation API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "carrionwatch/1.0",
		logger:    logger,
	}
}

// Query selects the observation records for one run. Geolocation is always
// required; the quality tier is fixed to research grade.
type Query struct {
	TaxonName  string
	PlaceID    int
	MaxResults int
}

// FetchObservations retrieves up to q.MaxResults geolocated research-grade
// records, paging as needed. Results are requested in ascending ID order so
// two runs against the same snapshot return identical sequences. Any
// network, HTTP, or decode failure is returned to the caller and aborts the
// run; there is no partial-result mode.
func (c *Client) FetchObservations(ctx context.Context, q Query) ([]domain.Observation, error) {
	perPage := q.MaxResults
	if perPage > perPageCap {
		perPage = perPageCap
	}

	var all []domain.Observation
	for page := 1; len(all) < q.MaxResults; page++ {
		body, err := c.fetchPage(ctx, q, page, perPage)
		if err != nil {
			return nil, err
		}

		for _, rec := range body.Results {
			all = append(all, rec.toDomain())
			if len(all) == q.MaxResults {
				break
			}
		}

		c.logger.Debug("observation page fetched",
			"page", page,
			"page_results", len(body.Results),
			"total_results", body.TotalResults,
			"accumulated", len(all),
		)

		if len(body.Results) < perPage || len(all) >= body.TotalResults {
			break
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, q Query, page, perPage int) (*response, error) {
	params := url.Values{
		"taxon_name":    {q.TaxonName},
		"place_id":      {strconv.Itoa(q.PlaceID)},
		"quality_grade": {qualityGrade},
		"geo":           {"true"},
		"per_page":      {strconv.Itoa(perPage)},
		"page":          {strconv.Itoa(page)},
		"order_by":      {"id"},
		"order":         {"asc"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/observations?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("observation query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("observation API error: status %d: %s", resp.StatusCode, body)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode observation response: %w", err)
	}
	return &parsed, nil
}

// Observation API response types.

type response struct {
	TotalResults int      `json:"total_results"`
	Page         int      `json:"page"`
	PerPage      int      `json:"per_page"`
	Results      []record `json:"results"`
}

type record struct {
	ID           int64    `json:"id"`
	ObservedOn   string   `json:"observed_on"`
	Description  string   `json:"description"`
	PlaceGuess   string   `json:"place_guess"`
	URI          string   `json:"uri"`
	QualityGrade string   `json:"quality_grade"`
	LicenseCode  string   `json:"license_code"`
	Tags         []string `json:"tags"`
	User         user     `json:"user"`
	Photos       []photo  `json:"photos"`
	GeoJSON      *geom    `json:"geojson"`
}

type user struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

type photo struct {
	URL string `json:"url"`
}

type geom struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

func (r record) toDomain() domain.Observation {
	o := domain.Observation{
		ID:           r.ID,
		Description:  r.Description,
		PlaceGuess:   r.PlaceGuess,
		URI:          r.URI,
		QualityGrade: r.QualityGrade,
		LicenseCode:  r.LicenseCode,
		Tags:         r.Tags,
		UserLogin:    r.User.Login,
		UserName:     r.User.Name,
	}

	if t, err := time.Parse("2006-01-02", r.ObservedOn); err == nil {
		o.ObservedOn = t
	}
	if r.GeoJSON != nil && len(r.GeoJSON.Coordinates) == 2 {
		lon, lat := r.GeoJSON.Coordinates[0], r.GeoJSON.Coordinates[1]
		o.Longitude = &lon
		o.Latitude = &lat
	}
	if len(r.Photos) > 0 {
		o.PhotoURL = r.Photos[0].URL
	}
	return o
}
