// Package curated holds hand-maintained reference data: landmark lists for
// well-known cities, written descriptions for major Indian cities, and city
// profiles. Everything here is read-only.
package curated

import (
	"fmt"
	"strings"
)

// landmarks lists must-see places per city, keyed by lowercased city name.
var landmarks = map[string][]string{
	"mumbai":    {"Gateway of India", "Marine Drive", "Chhatrapati Shivaji Maharaj Terminus", "Elephanta Caves", "Haji Ali Dargah", "Siddhivinayak Temple"},
	"delhi":     {"Red Fort", "India Gate", "Qutub Minar", "Humayun's Tomb", "Lotus Temple", "Akshardham"},
	"new delhi": {"Red Fort", "India Gate", "Qutub Minar", "Humayun's Tomb", "Lotus Temple", "Akshardham"},
	"bengaluru": {"Bangalore Palace", "Lalbagh Botanical Garden", "Cubbon Park", "Tipu Sultan's Summer Palace", "ISKCON Temple"},
	"bangalore": {"Bangalore Palace", "Lalbagh Botanical Garden", "Cubbon Park", "Tipu Sultan's Summer Palace", "ISKCON Temple"},
	"hyderabad": {"Charminar", "Golconda Fort", "Ramoji Film City", "Hussain Sagar Lake", "Chowmahalla Palace"},
	"chennai":   {"Marina Beach", "Kapaleeshwarar Temple", "Fort St. George", "San Thome Cathedral"},
	"kolkata":   {"Victoria Memorial", "Howrah Bridge", "Dakshineswar Kali Temple", "Indian Museum"},
	"jaipur":    {"Hawa Mahal", "Amber Palace", "City Palace", "Jantar Mantar", "Nahargarh Fort"},
	"udaipur":   {"City Palace", "Lake Pichola", "Jag Mandir", "Saheliyon Ki Bari"},
	"agra":      {"Taj Mahal", "Agra Fort", "Mehtab Bagh", "Tomb of Akbar the Great"},
	"paris":     {"Eiffel Tower", "Louvre Museum", "Notre-Dame Cathedral", "Arc de Triomphe", "Sacre-Coeur"},
	"london":    {"Big Ben", "Tower of London", "London Eye", "Buckingham Palace", "British Museum"},
	"new york":  {"Statue of Liberty", "Central Park", "Empire State Building", "Times Square", "Brooklyn Bridge"},
	"dubai":     {"Burj Khalifa", "The Dubai Mall", "Palm Jumeirah", "Burj Al Arab", "Dubai Marina"},
}

var majorCityDescriptions = map[string]string{
	"mumbai":    "The city of dreams, known for its vibrant nightlife, Bollywood, and colonial architecture.",
	"bengaluru": "The Silicon Valley of India, famous for its parks, nightlife, and pleasant climate.",
	"hyderabad": "A city of pearls and biryani, blending rich history with a booming tech industry.",
	"chennai":   "The cultural capital of South India, known for its temples, beaches, and classical arts.",
	"kolkata":   "The artistic and intellectual capital, famous for its literature, sweets, and colonial heritage.",
	"jaipur":    "The Pink City, known for its stunning palaces, forts, and vibrant bazaars.",
	"udaipur":   "The City of Lakes, famous for its romantic setting and lavish royal residences.",
	"agra":      "Home to the Taj Mahal, a symbol of eternal love and Mughal architectural brilliance.",
	"varanasi":  "The spiritual capital of India, one of the world's oldest living cities on the banks of the Ganges.",
	"kochi":     "Queen of the Arabian Sea, known for its Chinese fishing nets and colonial history.",
	"pune":      "The Oxford of the East, a vibrant hub of education, culture, and history.",
}

// Landmark is a curated place with its editorial label.
type Landmark struct {
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
}

// QuickFacts summarizes a city for a trip planner.
type QuickFacts struct {
	Region   string `json:"region"`
	BestTime string `json:"bestTime"`
	KnownFor string `json:"knownFor"`
	Duration string `json:"duration"`
	Vibe     string `json:"vibe"`
}

// Profile is a hand-written city page.
type Profile struct {
	Name       string     `json:"name"`
	Identity   string     `json:"identity"`
	QuickFacts QuickFacts `json:"quickFacts"`
	Places     []Landmark `json:"places"`
	Interests  []string   `json:"interests"`
	Tips       []string   `json:"tips"`
}

var profiles = map[string]Profile{
	"new delhi": {
		Name:     "New Delhi",
		Identity: "The cultural and political heart of India",
		QuickFacts: QuickFacts{
			Region:   "North India",
			BestTime: "Oct – Mar",
			KnownFor: "History & Food",
			Duration: "2–3 Days",
			Vibe:     "Historic & Modern",
		},
		Places: []Landmark{
			{Name: "India Gate", Descriptor: "War Memorial"},
			{Name: "Qutub Minar", Descriptor: "UNESCO Heritage"},
			{Name: "Red Fort", Descriptor: "Mughal Architecture"},
			{Name: "Humayun's Tomb", Descriptor: "Garden Tomb"},
			{Name: "Lotus Temple", Descriptor: "Bahá'í House of Worship"},
			{Name: "Chandni Chowk", Descriptor: "Old Delhi Market"},
		},
		Interests: []string{"Culture & History", "Food & Markets", "Nature & Outdoors", "Modern City"},
		Tips: []string{
			"Use the Delhi Metro to explore efficiently; it's clean, safe, and connects most major spots.",
			"Dress modestly when visiting religious sites (cover shoulders and knees).",
			"Street food is delicious but stick to busy stalls; bottled water is recommended.",
		},
	},
}

var templates = [...]string{
	"Discover the unique charm and vibrant streets of %[1]s.",
	"A bustling hub in %[2]s, offering a mix of history and modernity.",
	"Explore %[1]s, known for its local culture and welcoming atmosphere.",
	"Experience the authentic lifestyle and landmarks of %[1]s.",
}

const nearbyTemplate = "Explore %s, a vibrant destination nearby."

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Landmarks returns the curated landmark names for city, or false when the
// city has no curated list. The returned slice is a copy.
func Landmarks(city string) ([]string, bool) {
	names, ok := landmarks[normalize(city)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), names...), true
}

// MajorCityDescription returns the hand-written description for city.
func MajorCityDescription(city string) (string, bool) {
	d, ok := majorCityDescriptions[normalize(city)]
	return d, ok
}

// CityProfile returns the curated profile for city.
func CityProfile(city string) (Profile, bool) {
	p, ok := profiles[normalize(city)]
	return p, ok
}

// Identity returns the one-line identity from a city's profile.
func Identity(city string) (string, bool) {
	p, ok := CityProfile(city)
	if !ok || p.Identity == "" {
		return "", false
	}
	return p.Identity, true
}

// curatedDescription walks the major-city table then profile identities.
func curatedDescription(name string) (string, bool) {
	if d, ok := MajorCityDescription(name); ok {
		return d, true
	}
	return Identity(name)
}

// CityDescription describes a city in a listing. index is the city's position
// in the listing and picks the generic template when nothing curated exists.
func CityDescription(name, country string, index int) string {
	if d, ok := curatedDescription(name); ok {
		return d
	}
	n := len(templates)
	return fmt.Sprintf(templates[(index%n+n)%n], name, country)
}

// NearbyDescription describes a city listed as near another one.
func NearbyDescription(name string) string {
	if d, ok := curatedDescription(name); ok {
		return d
	}
	return fmt.Sprintf(nearbyTemplate, name)
}
