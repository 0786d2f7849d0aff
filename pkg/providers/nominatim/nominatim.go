// Package nominatim is a client for the OpenStreetMap Nominatim search API,
// used both for free-text place discovery and for single-point geocoding.
package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/rs/zerolog"
)

const providerName = "nominatim"

// Config holds Nominatim settings.
type Config struct {
	BaseURL string
}

// SearchOptions tunes a search call.
type SearchOptions struct {
	Limit          int
	AddressDetails bool
	Language       string
}

// Place is a Nominatim search hit translated out of the wire schema.
type Place struct {
	Name        string
	DisplayName string
	Type        string
	Category    string
	Latitude    *float64
	Longitude   *float64
	Importance  float64
}

// placeDTO mirrors one element of Nominatim's format=json response.
// Coordinates arrive as strings.
type placeDTO struct {
	PlaceID     int64   `json:"place_id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Class       string  `json:"class"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
}

// Client queries Nominatim.
type Client struct {
	baseURL string
	http    *providers.Client
	logger  zerolog.Logger
}

// NewClient creates a Nominatim client.
func NewClient(cfg Config, httpClient *providers.Client, logger zerolog.Logger) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("nominatim base url cannot be empty")
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
		logger:  logger.With().Str("component", "NominatimClient").Logger(),
	}, nil
}

// Search runs a free-text query.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]Place, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.AddressDetails {
		q.Set("addressdetails", "1")
	}
	if opts.Language != "" {
		q.Set("accept-language", opts.Language)
	}

	var dtos []placeDTO
	if err := c.http.GetJSON(ctx, providerName, c.baseURL+"/search?"+q.Encode(), nil, &dtos); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(dtos))
	for _, d := range dtos {
		category := d.Category
		if category == "" {
			category = d.Class
		}
		places = append(places, Place{
			Name:        d.Name,
			DisplayName: d.DisplayName,
			Type:        d.Type,
			Category:    category,
			Latitude:    parseCoordinate(d.Lat),
			Longitude:   parseCoordinate(d.Lon),
			Importance:  d.Importance,
		})
	}
	c.logger.Debug().Str("query", query).Int("count", len(places)).Msg("Nominatim search complete.")
	return places, nil
}

func parseCoordinate(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
