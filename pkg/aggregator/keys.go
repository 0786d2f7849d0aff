package aggregator

import (
	"fmt"
	"strings"
)

// AllCountriesKey is the cache key of the bulk country listing.
const AllCountriesKey = "all_countries_cache"

// CitiesKey is the cache key of a country's city listing. The v2 token marks
// the current record shape; older entries are simply never read.
func CitiesKey(countryCode string, limit int) string {
	return fmt.Sprintf("cities_v2_%s_%d", countryCode, limit)
}

// NearbyKey is the cache key of a nearby-city listing.
func NearbyKey(city string, limit int) string {
	return fmt.Sprintf("nearby_%s_%d", city, limit)
}

// PlacesKey is the cache key of a city's attraction listing.
func PlacesKey(city string) string {
	return "places_" + normalize(city)
}

// GeocodeKey is the cache key of a geocoded query.
func GeocodeKey(query string) string {
	return "geocode_" + normalize(query)
}

// Request keys live in their own namespace so a pending request can never
// collide with a stored cache entry.
func citiesRequestKey(countryCode string, limit int) string {
	return fmt.Sprintf("req_cities_%s_%d", countryCode, limit)
}

func nearbyRequestKey(city string, limit int) string {
	return fmt.Sprintf("req_nearby_%s_%d", city, limit)
}

func placesRequestKey(city string) string { return "req_places_" + normalize(city) }

func searchRequestKey(query string) string { return "req_search_" + query }

func geocodeRequestKey(query string) string { return "req_geocode_" + normalize(query) }

const countriesRequestKey = "req_countries"

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
