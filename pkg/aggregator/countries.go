package aggregator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/illmade-knight/go-destinations/pkg/providers/nominatim"
	"github.com/illmade-knight/go-destinations/pkg/types"
)

// ErrCountryNotFound is returned by Country when no registry entry resolves.
var ErrCountryNotFound = errors.New("country not found")

// Country looks a country up by name, preferring an exact case-insensitive
// match over the registry's first fuzzy hit.
func (s *Service) Country(ctx context.Context, name string) (types.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Country{}, ErrCountryNotFound
	}

	matches, err := s.countries.ByName(ctx, name)
	if err != nil {
		s.logger.Warn().Err(err).Str("country", name).Msg("Country lookup failed.")
		return types.Country{}, fmt.Errorf("%w: %s: %w", ErrCountryNotFound, name, err)
	}
	if len(matches) == 0 {
		return types.Country{}, fmt.Errorf("%w: %s", ErrCountryNotFound, name)
	}

	want := normalize(name)
	for _, c := range matches {
		if normalize(c.CommonName) == want {
			return c, nil
		}
	}
	return matches[0], nil
}

// AllCountries lists every country, sorted by name.
func (s *Service) AllCountries(ctx context.Context) []types.Country {
	return orEmpty(readThrough(ctx, s.logger, s.countryCache, s.countryGroup,
		AllCountriesKey, countriesRequestKey,
		func(ctx context.Context) []types.Country {
			countries, err := s.countries.All(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Failed to list countries.")
				return nil
			}
			slices.SortStableFunc(countries, func(a, b types.Country) int {
				return strings.Compare(strings.ToLower(a.CommonName), strings.ToLower(b.CommonName))
			})
			return countries
		},
		nonEmpty[types.Country],
	))
}

// CityCoordinates geocodes a free-text query to its best match.
func (s *Service) CityCoordinates(ctx context.Context, query string) (types.Coordinates, bool) {
	if strings.TrimSpace(query) == "" {
		return types.Coordinates{}, false
	}

	coords := readThrough(ctx, s.logger, s.geocodeCache, s.geocodeGroup,
		GeocodeKey(query), geocodeRequestKey(query),
		func(ctx context.Context) *types.Coordinates {
			places, err := s.places.Search(ctx, query, nominatim.SearchOptions{Limit: 1})
			if err != nil {
				s.logger.Warn().Err(err).Str("query", query).Msg("Geocoding failed.")
				return nil
			}
			for _, p := range places {
				if p.Latitude != nil && p.Longitude != nil {
					return &types.Coordinates{Latitude: *p.Latitude, Longitude: *p.Longitude}
				}
			}
			return nil
		},
		func(c *types.Coordinates) bool { return c != nil },
	)
	if coords == nil {
		return types.Coordinates{}, false
	}
	return *coords, true
}

// CityImage returns the hero image for a city page. It never returns an
// empty string.
func (s *Service) CityImage(ctx context.Context, city string) string {
	return s.images.ResolveOrPlaceholder(ctx, strings.TrimSpace(city)+" city landmark")
}
