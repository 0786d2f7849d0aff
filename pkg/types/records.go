package types

// Candidate is a raw place or city produced by a provider before enrichment.
// It is never persisted on its own, only as part of an enriched Record set.
type Candidate struct {
	Name       string
	Category   string
	Latitude   *float64
	Longitude  *float64
	Importance float64
	// Descriptor is a short human label such as "Must Visit" or "Museum".
	Descriptor string
	// Country is the display name of the country the candidate belongs to, if known.
	Country string
	// Distance from a seed city in kilometres, set only for nearby-city candidates.
	Distance *float64
}

// Record is the display-ready unit returned to consumers and stored in the cache.
type Record struct {
	Name          string   `json:"name"`
	Image         string   `json:"image"`
	Description   string   `json:"description"`
	Latitude      *float64 `json:"lat,omitempty"`
	Longitude     *float64 `json:"lon,omitempty"`
	DistanceLabel string   `json:"distance,omitempty"`
}

// Country is a country registry entry.
type Country struct {
	CommonName   string    `json:"name"`
	OfficialName string    `json:"officialName,omitempty"`
	Alpha2Code   string    `json:"cca2"`
	Region       string    `json:"region"`
	Subregion    string    `json:"subregion,omitempty"`
	FlagURL      string    `json:"flag"`
	Population   int64     `json:"population"`
	Capital      string    `json:"capital"`
	LatLng       []float64 `json:"latlng,omitempty"`
}

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// SearchResult types.
const (
	SearchTypeCountry = "country"
	SearchTypeCity    = "city"
)

// SearchResult is a single hit from the global search.
type SearchResult struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Subtext string `json:"subtext"`
	Image   string `json:"image"`
	ID      string `json:"id"`
	Link    string `json:"link"`
}

// SearchResults holds both search branches. Either list may be empty.
type SearchResults struct {
	Countries []SearchResult `json:"countries"`
	Cities    []SearchResult `json:"cities"`
}

// WishlistItem is a saved destination.
type WishlistItem struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}
