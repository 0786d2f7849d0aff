package curated_test

import (
	"math"
	"testing"

	"github.com/illmade-knight/go-destinations/pkg/curated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandmarks(t *testing.T) {
	t.Run("matches case and whitespace insensitively", func(t *testing.T) {
		names, ok := curated.Landmarks("  Paris ")
		require.True(t, ok)
		assert.Equal(t, []string{"Eiffel Tower", "Louvre Museum", "Notre-Dame Cathedral", "Arc de Triomphe", "Sacre-Coeur"}, names)
	})

	t.Run("returns a copy", func(t *testing.T) {
		names, _ := curated.Landmarks("agra")
		names[0] = "changed"
		again, _ := curated.Landmarks("agra")
		assert.Equal(t, "Taj Mahal", again[0])
	})

	t.Run("alias keys share a list", func(t *testing.T) {
		a, _ := curated.Landmarks("bengaluru")
		b, _ := curated.Landmarks("bangalore")
		assert.Equal(t, a, b)
	})

	t.Run("unknown city", func(t *testing.T) {
		_, ok := curated.Landmarks("Lyon")
		assert.False(t, ok)
	})
}

func TestCityDescription(t *testing.T) {
	t.Run("major city table wins", func(t *testing.T) {
		got := curated.CityDescription("Jaipur", "India", 3)
		assert.Equal(t, "The Pink City, known for its stunning palaces, forts, and vibrant bazaars.", got)
	})

	t.Run("profile identity is next", func(t *testing.T) {
		assert.Equal(t, "The cultural and political heart of India", curated.CityDescription("New Delhi", "India", 0))
	})

	t.Run("templates rotate by index", func(t *testing.T) {
		cases := map[int]string{
			0: "Discover the unique charm and vibrant streets of Nashik.",
			1: "A bustling hub in India, offering a mix of history and modernity.",
			2: "Explore Nashik, known for its local culture and welcoming atmosphere.",
			3: "Experience the authentic lifestyle and landmarks of Nashik.",
			4: "Discover the unique charm and vibrant streets of Nashik.",
		}
		for index, want := range cases {
			assert.Equal(t, want, curated.CityDescription("Nashik", "India", index))
		}
	})

	t.Run("negative index wraps around", func(t *testing.T) {
		assert.Equal(t, "Experience the authentic lifestyle and landmarks of Nashik.", curated.CityDescription("Nashik", "India", -1))
		assert.NotPanics(t, func() {
			curated.CityDescription("Nashik", "India", math.MinInt)
		})
	})
}

func TestNearbyDescription(t *testing.T) {
	assert.Equal(t, "Explore Mysore, a vibrant destination nearby.", curated.NearbyDescription("Mysore"))
	assert.Equal(t, "The Oxford of the East, a vibrant hub of education, culture, and history.", curated.NearbyDescription("Pune"))
}

func TestCityProfile(t *testing.T) {
	p, ok := curated.CityProfile("new delhi")
	require.True(t, ok)
	assert.Equal(t, "North India", p.QuickFacts.Region)
	assert.Len(t, p.Places, 6)

	_, ok = curated.CityProfile("delhi")
	assert.False(t, ok)
}
