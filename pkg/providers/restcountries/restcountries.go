// Package restcountries is a client for the free REST Countries registry.
package restcountries

import (
	"context"
	"fmt"
	"net/url"

	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/illmade-knight/go-destinations/pkg/types"
	"github.com/rs/zerolog"
)

const (
	providerName = "restcountries"
	allFields    = "name,cca2,region,flags,population,capital"
	noCapital    = "N/A"
)

// Config holds REST Countries settings.
type Config struct {
	BaseURL string
}

type countryDTO struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	CCA2       string   `json:"cca2"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Capital    []string `json:"capital"`
	Population int64    `json:"population"`
	Flags      struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
	LatLng []float64 `json:"latlng"`
}

func (d countryDTO) toCountry() types.Country {
	capital := noCapital
	if len(d.Capital) > 0 && d.Capital[0] != "" {
		capital = d.Capital[0]
	}
	flag := d.Flags.SVG
	if flag == "" {
		flag = d.Flags.PNG
	}
	return types.Country{
		CommonName:   d.Name.Common,
		OfficialName: d.Name.Official,
		Alpha2Code:   d.CCA2,
		Region:       d.Region,
		Subregion:    d.Subregion,
		FlagURL:      flag,
		Population:   d.Population,
		Capital:      capital,
		LatLng:       d.LatLng,
	}
}

// Client queries REST Countries.
type Client struct {
	baseURL string
	http    *providers.Client
	logger  zerolog.Logger
}

// NewClient creates a REST Countries client.
func NewClient(cfg Config, httpClient *providers.Client, logger zerolog.Logger) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("restcountries base url cannot be empty")
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
		logger:  logger.With().Str("component", "RestCountriesClient").Logger(),
	}, nil
}

// ByName returns countries whose name matches name, in registry order.
// A registry 404 is reported as providers.ErrNotFound.
func (c *Client) ByName(ctx context.Context, name string) ([]types.Country, error) {
	var dtos []countryDTO
	endpoint := c.baseURL + "/name/" + url.PathEscape(name)
	if err := c.http.GetJSON(ctx, providerName, endpoint, nil, &dtos); err != nil {
		return nil, err
	}
	countries := translate(dtos)
	c.logger.Debug().Str("name", name).Int("count", len(countries)).Msg("Country lookup complete.")
	return countries, nil
}

// All returns every country with the listing field projection applied.
func (c *Client) All(ctx context.Context) ([]types.Country, error) {
	var dtos []countryDTO
	endpoint := c.baseURL + "/all?fields=" + url.QueryEscape(allFields)
	if err := c.http.GetJSON(ctx, providerName, endpoint, nil, &dtos); err != nil {
		return nil, err
	}
	countries := translate(dtos)
	c.logger.Debug().Int("count", len(countries)).Int("dropped", len(dtos)-len(countries)).Msg("Country listing complete.")
	return countries, nil
}

func translate(dtos []countryDTO) []types.Country {
	out := make([]types.Country, 0, len(dtos))
	for _, d := range dtos {
		if d.Name.Common == "" {
			continue
		}
		out = append(out, d.toCountry())
	}
	return out
}
