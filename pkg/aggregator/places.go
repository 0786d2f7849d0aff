package aggregator

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/illmade-knight/go-destinations/pkg/curated"
	"github.com/illmade-knight/go-destinations/pkg/enrichment"
	"github.com/illmade-knight/go-destinations/pkg/providers/nominatim"
	"github.com/illmade-knight/go-destinations/pkg/types"
)

const (
	placesPerQuery     = 8
	curatedCategory    = "attraction"
	curatedDescriptor  = "Must Visit"
	fallbackDescriptor = "Must See"
)

// placeQueries are the discovery searches run for a city without a curated list.
var placeQueries = []string{"tourism in %s", "attractions in %s", "landmark in %s"}

// excludedPlaceTerms drop lodging and street-level results from discovery.
var excludedPlaceTerms = []string{"hotel", "hostel", "guest house", "motel", "road", "street", "way", "lane", "district", "region"}

// PlacesInCity lists attractions in a city. Cities with a curated landmark
// list always use it; others fall back to open discovery search.
func (s *Service) PlacesInCity(ctx context.Context, cityName string) []types.Record {
	city := strings.TrimSpace(cityName)
	if city == "" {
		return []types.Record{}
	}

	return orEmpty(readThrough(ctx, s.logger, s.placesCache, s.recordGroup,
		PlacesKey(city), placesRequestKey(city),
		func(ctx context.Context) []types.Record {
			candidates := FirstNonEmpty(ctx, s.logger,
				Strategy[types.Candidate]{Name: "curated_landmarks", Run: func(ctx context.Context) ([]types.Candidate, error) {
					return s.curatedPlaces(ctx, city)
				}},
				Strategy[types.Candidate]{Name: "nominatim_discovery", Run: func(ctx context.Context) ([]types.Candidate, error) {
					return s.discoverPlaces(ctx, city)
				}},
			)
			if len(candidates) == 0 {
				return nil
			}
			return s.enricher.Enrich(ctx, candidates, func(c types.Candidate) string {
				return c.Name + " " + city
			}, nil)
		},
		nonEmpty[types.Record],
	))
}

// curatedPlaces geocodes each curated landmark. A landmark that fails to
// geocode is kept without coordinates.
func (s *Service) curatedPlaces(ctx context.Context, city string) ([]types.Candidate, error) {
	names, ok := curated.Landmarks(city)
	if !ok {
		return nil, nil
	}
	s.logger.Debug().Str("city", city).Int("count", len(names)).Msg("Using curated landmarks.")

	return enrichment.FanOut(ctx, names, s.cfg.EnrichmentConcurrency, func(ctx context.Context, _ int, name string) (types.Candidate, error) {
		c := types.Candidate{Name: name, Category: curatedCategory, Descriptor: curatedDescriptor}
		if coords, ok := s.CityCoordinates(ctx, name+" "+city); ok {
			lat, lon := coords.Latitude, coords.Longitude
			c.Latitude, c.Longitude = &lat, &lon
		}
		return c, nil
	})
}

// discoverPlaces runs the discovery queries in parallel. Any failed query
// abandons the whole strategy.
func (s *Service) discoverPlaces(ctx context.Context, city string) ([]types.Candidate, error) {
	opts := nominatim.SearchOptions{Limit: placesPerQuery, AddressDetails: true, Language: "en"}
	batches, err := enrichment.FanOut(ctx, placeQueries, 0, func(ctx context.Context, _ int, format string) ([]nominatim.Place, error) {
		return s.places.Search(ctx, fmt.Sprintf(format, city), opts)
	})
	if err != nil {
		return nil, err
	}

	cityKey := normalize(city)
	seen := make(map[string]struct{})
	var candidates []types.Candidate
	for _, batch := range batches {
		for _, p := range batch {
			if p.Name == "" {
				continue
			}
			key := strings.ToLower(p.Name)
			if key == cityKey {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if containsAny(key, excludedPlaceTerms) {
				continue
			}
			tag := p.Type
			if tag == "" {
				tag = p.Category
			}
			if tag == "" {
				tag = curatedCategory
			}
			candidates = append(candidates, types.Candidate{
				Name:       p.Name,
				Category:   p.Category,
				Latitude:   p.Latitude,
				Longitude:  p.Longitude,
				Importance: p.Importance,
				Descriptor: formatDescriptor(tag),
			})
		}
	}

	slices.SortStableFunc(candidates, func(a, b types.Candidate) int {
		return cmp.Compare(b.Importance, a.Importance)
	})
	if len(candidates) > s.cfg.PlacesLimit {
		candidates = candidates[:s.cfg.PlacesLimit]
	}
	return candidates, nil
}

// formatDescriptor turns an OSM type tag such as "place_of_worship" into a
// display label such as "Place Of Worship".
func formatDescriptor(tag string) string {
	switch tag {
	case "":
		return fallbackDescriptor
	case "yes":
		return "Attraction"
	}
	runes := []rune(strings.ReplaceAll(tag, "_", " "))
	for i, r := range runes {
		if i == 0 || !isWordRune(runes[i-1]) {
			runes[i] = unicode.ToUpper(r)
		}
	}
	return string(runes)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
