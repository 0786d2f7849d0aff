package aggregator

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/illmade-knight/go-destinations/pkg/curated"
	"github.com/illmade-knight/go-destinations/pkg/enrichment"
	"github.com/illmade-knight/go-destinations/pkg/providers/geodb"
	"github.com/illmade-knight/go-destinations/pkg/types"
)

const seedLookupLimit = 5

var errNoSeedCity = errors.New("no matching seed city")

// CitiesByCountry lists the most populous cities of a country, decorated for
// display. Both the country name and its alpha-2 code are required; a
// non-positive limit uses the configured default.
func (s *Service) CitiesByCountry(ctx context.Context, countryName, countryCode string, limit int) []types.Record {
	if strings.TrimSpace(countryName) == "" || strings.TrimSpace(countryCode) == "" {
		return []types.Record{}
	}
	if limit <= 0 {
		limit = s.cfg.DefaultCityLimit
	}

	return orEmpty(readThrough(ctx, s.logger, s.cityCache, s.recordGroup,
		CitiesKey(countryCode, limit), citiesRequestKey(countryCode, limit),
		func(ctx context.Context) []types.Record {
			s.logger.Info().Str("country", countryName).Str("code", countryCode).Int("limit", limit).Msg("Fetching cities for country.")
			candidates := FirstNonEmpty(ctx, s.logger, Strategy[types.Candidate]{
				Name: "geodb_country_cities",
				Run: func(ctx context.Context) ([]types.Candidate, error) {
					cities, err := s.cities.CitiesByCountry(ctx, countryCode, limit, s.cfg.MinPopulation)
					if err != nil {
						return nil, err
					}
					return cityCandidates(s.rankCities(cities, limit), countryName), nil
				},
			})
			if len(candidates) == 0 {
				return nil
			}
			return s.enricher.Enrich(ctx, candidates, cityImageQuery, func(c types.Candidate, i int) string {
				return curated.CityDescription(c.Name, c.Country, i)
			})
		},
		nonEmpty[types.Record],
	))
}

// NearbyCities lists populous cities within the configured radius of
// cityName. A non-positive limit uses the configured default.
func (s *Service) NearbyCities(ctx context.Context, cityName string, limit int) []types.Record {
	if strings.TrimSpace(cityName) == "" {
		return []types.Record{}
	}
	if limit <= 0 {
		limit = s.cfg.DefaultNearbyLimit
	}

	return orEmpty(readThrough(ctx, s.logger, s.nearbyCache, s.recordGroup,
		NearbyKey(cityName, limit), nearbyRequestKey(cityName, limit),
		func(ctx context.Context) []types.Record {
			candidates := FirstNonEmpty(ctx, s.logger, Strategy[types.Candidate]{
				Name: "geodb_nearby",
				Run: func(ctx context.Context) ([]types.Candidate, error) {
					seed, err := s.seedCity(ctx, cityName)
					if err != nil {
						return nil, err
					}
					cities, err := s.cities.NearbyCities(ctx, seed.ID, s.cfg.NearbyRadiusKm, limit, s.cfg.MinPopulation)
					if err != nil {
						return nil, err
					}
					return cityCandidates(s.rankCities(cities, limit), seed.Country), nil
				},
			})
			if len(candidates) == 0 {
				return nil
			}
			records := s.enricher.Enrich(ctx, candidates, cityImageQuery, func(c types.Candidate, _ int) string {
				return curated.NearbyDescription(c.Name)
			})
			for i := range records {
				records[i].DistanceLabel = enrichment.DistanceLabel(candidates[i].Distance)
			}
			return records
		},
		nonEmpty[types.Record],
	))
}

// seedCity resolves the city a radius search starts from, preferring an exact
// case-insensitive name match over the most populous prefix match.
func (s *Service) seedCity(ctx context.Context, cityName string) (geodb.City, error) {
	matches, err := s.cities.FindCities(ctx, cityName, seedLookupLimit)
	if err != nil {
		return geodb.City{}, err
	}
	if len(matches) == 0 {
		return geodb.City{}, errNoSeedCity
	}
	byPopulation(matches)
	want := normalize(cityName)
	for _, c := range matches {
		if normalize(c.Name) == want {
			return c, nil
		}
	}
	return matches[0], nil
}

// rankCities re-applies the population floor, ordering and limit client side
// so upstream drift in any of them cannot leak through.
func (s *Service) rankCities(cities []geodb.City, limit int) []geodb.City {
	out := make([]geodb.City, 0, len(cities))
	for _, c := range cities {
		if c.Population >= int64(s.cfg.MinPopulation) {
			out = append(out, c)
		}
	}
	byPopulation(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func byPopulation(cities []geodb.City) {
	slices.SortStableFunc(cities, func(a, b geodb.City) int {
		return cmp.Compare(b.Population, a.Population)
	})
}

func cityCandidates(cities []geodb.City, fallbackCountry string) []types.Candidate {
	out := make([]types.Candidate, 0, len(cities))
	for _, c := range cities {
		lat, lon := c.Latitude, c.Longitude
		country := c.Country
		if country == "" {
			country = fallbackCountry
		}
		out = append(out, types.Candidate{
			Name:      c.Name,
			Category:  "city",
			Latitude:  &lat,
			Longitude: &lon,
			Country:   country,
			Distance:  c.Distance,
		})
	}
	return out
}

func cityImageQuery(c types.Candidate) string {
	return c.Name + " city landmark"
}
