package aggregator

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/illmade-knight/go-destinations/pkg/enrichment"
	"github.com/illmade-knight/go-destinations/pkg/providers/geodb"
	"github.com/illmade-knight/go-destinations/pkg/types"
)

const minSearchLength = 2

// Search looks query up as a country name and as a city name prefix in
// parallel. The branches are independent: one failing leaves the other's
// results intact. Search results are de-duplicated but never cached.
func (s *Service) Search(ctx context.Context, query string) types.SearchResults {
	q := normalize(query)
	if utf8.RuneCountInString(q) < minSearchLength {
		return emptySearch()
	}

	results, _, err := s.searchGroup.Do(ctx, searchRequestKey(q), func(ctx context.Context) (types.SearchResults, error) {
		var (
			wg  sync.WaitGroup
			out = emptySearch()
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			out.Countries = s.searchCountries(ctx, q)
		}()
		go func() {
			defer wg.Done()
			out.Cities = s.searchCities(ctx, q)
		}()
		wg.Wait()
		s.logger.Debug().Str("query", q).Int("countries", len(out.Countries)).Int("cities", len(out.Cities)).Msg("Search complete.")
		return out, nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("query", q).Msg("Gave up waiting for search.")
		return emptySearch()
	}
	results.Countries = orEmpty(results.Countries)
	results.Cities = orEmpty(results.Cities)
	return results
}

func (s *Service) searchCountries(ctx context.Context, q string) []types.SearchResult {
	countries, err := s.countries.ByName(ctx, q)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", q).Msg("Country search failed.")
		return []types.SearchResult{}
	}
	if len(countries) > s.cfg.SearchLimit {
		countries = countries[:s.cfg.SearchLimit]
	}
	out, _ := enrichment.FanOut(ctx, countries, s.cfg.EnrichmentConcurrency, func(ctx context.Context, _ int, c types.Country) (types.SearchResult, error) {
		return types.SearchResult{
			Type:    types.SearchTypeCountry,
			Name:    c.CommonName,
			Subtext: c.Region,
			Image:   s.images.ResolveOrPlaceholder(ctx, c.CommonName+" country landmark"),
			ID:      c.Alpha2Code,
			Link:    "/country/" + strings.ToLower(c.CommonName),
		}, nil
	})
	return orEmpty(out)
}

func (s *Service) searchCities(ctx context.Context, q string) []types.SearchResult {
	cities, err := s.cities.FindCities(ctx, q, s.cfg.SearchLimit)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", q).Msg("City search failed.")
		return []types.SearchResult{}
	}
	if len(cities) > s.cfg.SearchLimit {
		cities = cities[:s.cfg.SearchLimit]
	}
	out, _ := enrichment.FanOut(ctx, cities, s.cfg.EnrichmentConcurrency, func(ctx context.Context, _ int, c geodb.City) (types.SearchResult, error) {
		return types.SearchResult{
			Type:    types.SearchTypeCity,
			Name:    c.Name,
			Subtext: c.Country,
			Image:   s.images.ResolveOrPlaceholder(ctx, c.Name+" city"),
			ID:      strconv.FormatInt(c.ID, 10),
			Link:    "/country/" + strings.ToLower(c.Country) + "/city/" + strings.ToLower(c.Name),
		}, nil
	})
	return orEmpty(out)
}

func emptySearch() types.SearchResults {
	return types.SearchResults{Countries: []types.SearchResult{}, Cities: []types.SearchResult{}}
}
