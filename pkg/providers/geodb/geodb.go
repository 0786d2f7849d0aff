// Package geodb is a client for the GeoDB Cities API (RapidAPI), the primary,
// rate-limited source of city listings and radius searches.
package geodb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const providerName = "geodb"

// Config holds GeoDB connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Host    string
	// RequestsPerSecond throttles calls client side. Zero disables throttling.
	RequestsPerSecond float64
}

// City is a GeoDB city translated out of the wire schema.
type City struct {
	ID          int64
	Name        string
	Country     string
	CountryCode string
	Region      string
	Latitude    float64
	Longitude   float64
	Population  int64
	// Distance from the seed city, only set by NearbyCities. Unit is km.
	Distance *float64
}

// cityDTO mirrors one element of GeoDB's "data" array.
type cityDTO struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	City        string   `json:"city"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	Region      string   `json:"region"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Population  int64    `json:"population"`
	Distance    *float64 `json:"distance"`
}

type citiesResponse struct {
	Data []cityDTO `json:"data"`
}

// Client queries GeoDB.
type Client struct {
	cfg     Config
	http    *providers.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient creates a GeoDB client.
func NewClient(cfg Config, httpClient *providers.Client, logger zerolog.Logger) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("geodb base url cannot be empty")
	}
	c := &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.With().Str("component", "GeoDBClient").Logger(),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// CitiesByCountry lists cities of a country (ISO alpha-2 code), most populous first.
func (c *Client) CitiesByCountry(ctx context.Context, countryCode string, limit, minPopulation int) ([]City, error) {
	q := url.Values{}
	q.Set("countryIds", countryCode)
	q.Set("types", "CITY")
	q.Set("sort", "-population")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("minPopulation", strconv.Itoa(minPopulation))
	return c.list(ctx, "/cities", q)
}

// FindCities looks cities up by name prefix, most populous first.
func (c *Client) FindCities(ctx context.Context, namePrefix string, limit int) ([]City, error) {
	q := url.Values{}
	q.Set("namePrefix", namePrefix)
	q.Set("sort", "-population")
	q.Set("limit", strconv.Itoa(limit))
	return c.list(ctx, "/cities", q)
}

// NearbyCities lists cities within radiusKm of the city with the given id.
func (c *Client) NearbyCities(ctx context.Context, cityID int64, radiusKm, limit, minPopulation int) ([]City, error) {
	q := url.Values{}
	q.Set("radius", strconv.Itoa(radiusKm))
	q.Set("distanceUnit", "KM")
	q.Set("minPopulation", strconv.Itoa(minPopulation))
	q.Set("sort", "-population")
	q.Set("limit", strconv.Itoa(limit))
	return c.list(ctx, fmt.Sprintf("/cities/%d/nearbyCities", cityID), q)
}

func (c *Client) list(ctx context.Context, path string, q url.Values) ([]City, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName, providers.ErrMissingCredentials)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: throttle wait: %w", providerName, err)
		}
	}

	headers := http.Header{}
	headers.Set("x-rapidapi-key", c.cfg.APIKey)
	headers.Set("x-rapidapi-host", c.cfg.Host)

	var resp citiesResponse
	endpoint := c.cfg.BaseURL + path + "?" + q.Encode()
	if err := c.http.GetJSON(ctx, providerName, endpoint, headers, &resp); err != nil {
		return nil, err
	}

	cities := make([]City, 0, len(resp.Data))
	for _, dto := range resp.Data {
		if dto.Name == "" {
			continue
		}
		cities = append(cities, City{
			ID:          dto.ID,
			Name:        dto.Name,
			Country:     dto.Country,
			CountryCode: dto.CountryCode,
			Region:      dto.Region,
			Latitude:    dto.Latitude,
			Longitude:   dto.Longitude,
			Population:  dto.Population,
			Distance:    dto.Distance,
		})
	}
	c.logger.Debug().Str("path", path).Int("count", len(cities)).Msg("GeoDB returned cities.")
	return cities, nil
}
