// Package unsplash is a client for the Unsplash photo search API.
package unsplash

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/rs/zerolog"
)

const providerName = "unsplash"

// Photo orientations accepted by the search endpoint.
const (
	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"
	OrientationSquarish  = "squarish"
)

// Config holds Unsplash settings.
type Config struct {
	BaseURL   string
	AccessKey string
}

// Photo is a search hit translated out of the wire schema.
type Photo struct {
	ID          string
	URL         string
	Description string
}

type searchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID             string `json:"id"`
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Client queries Unsplash.
type Client struct {
	cfg    Config
	http   *providers.Client
	logger zerolog.Logger
}

// NewClient creates an Unsplash client. A missing access key is allowed; every
// call then fails fast with providers.ErrMissingCredentials.
func NewClient(cfg Config, httpClient *providers.Client, logger zerolog.Logger) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("unsplash base url cannot be empty")
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.With().Str("component", "UnsplashClient").Logger(),
	}, nil
}

// SearchPhotos returns up to perPage photos for query, best match first.
func (c *Client) SearchPhotos(ctx context.Context, query, orientation string, perPage int) ([]Photo, error) {
	if c.cfg.AccessKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName, providers.ErrMissingCredentials)
	}
	if orientation == "" {
		orientation = OrientationLandscape
	}
	if perPage <= 0 {
		perPage = 1
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("orientation", orientation)

	headers := http.Header{}
	headers.Set("Authorization", "Client-ID "+c.cfg.AccessKey)

	var resp searchResponse
	if err := c.http.GetJSON(ctx, providerName, c.cfg.BaseURL+"/search/photos?"+q.Encode(), headers, &resp); err != nil {
		return nil, err
	}

	photos := make([]Photo, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URLs.Regular == "" {
			continue
		}
		desc := r.Description
		if desc == "" {
			desc = r.AltDescription
		}
		photos = append(photos, Photo{ID: r.ID, URL: r.URLs.Regular, Description: desc})
	}
	return photos, nil
}
