package aggregator_test

import (
	"context"
	"testing"

	"github.com/illmade-knight/go-destinations/pkg/providers/geodb"
	"github.com/illmade-knight/go-destinations/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()

	jaipur := func(_ context.Context, prefix string, limit int) ([]geodb.City, error) {
		if prefix != "ja" || limit != 5 {
			return nil, errProvider
		}
		return []geodb.City{{ID: 7, Name: "Jaipur", Country: "India"}}, nil
	}
	japan := func(_ context.Context, name string) ([]types.Country, error) {
		return []types.Country{{CommonName: "Japan", Alpha2Code: "JP", Region: "Asia"}}, nil
	}

	t.Run("returns both branches", func(t *testing.T) {
		h := newHarness(t)
		h.cities.FindCitiesFunc = jaipur
		h.countries.ByNameFunc = japan
		svc := h.start(t)

		results := svc.Search(ctx, "  JA ")

		require.Len(t, results.Countries, 1)
		assert.Equal(t, types.SearchResult{
			Type: types.SearchTypeCountry, Name: "Japan", Subtext: "Asia",
			Image: "img:Japan country landmark", ID: "JP", Link: "/country/japan",
		}, results.Countries[0])
		require.Len(t, results.Cities, 1)
		assert.Equal(t, types.SearchResult{
			Type: types.SearchTypeCity, Name: "Jaipur", Subtext: "India",
			Image: "img:Jaipur city", ID: "7", Link: "/country/india/city/jaipur",
		}, results.Cities[0])
	})

	t.Run("country failure leaves cities intact", func(t *testing.T) {
		h := newHarness(t)
		h.cities.FindCitiesFunc = jaipur
		svc := h.start(t)

		results := svc.Search(ctx, "ja")

		assert.NotNil(t, results.Countries)
		assert.Empty(t, results.Countries)
		assert.Len(t, results.Cities, 1)
	})

	t.Run("city failure leaves countries intact", func(t *testing.T) {
		h := newHarness(t)
		h.countries.ByNameFunc = japan
		svc := h.start(t)

		results := svc.Search(ctx, "ja")

		assert.Len(t, results.Countries, 1)
		assert.NotNil(t, results.Cities)
		assert.Empty(t, results.Cities)
	})

	t.Run("caps each branch at five", func(t *testing.T) {
		h := newHarness(t)
		h.countries.ByNameFunc = func(context.Context, string) ([]types.Country, error) {
			out := make([]types.Country, 8)
			for i := range out {
				out[i] = types.Country{CommonName: string(rune('A' + i))}
			}
			return out, nil
		}
		svc := h.start(t)

		assert.Len(t, svc.Search(ctx, "land").Countries, 5)
	})

	t.Run("short queries make no calls", func(t *testing.T) {
		h := newHarness(t)
		svc := h.start(t)

		results := svc.Search(ctx, " a ")

		assert.Empty(t, results.Countries)
		assert.Empty(t, results.Cities)
		assert.Equal(t, int32(0), h.countries.byNameCalls.Load())
		assert.Equal(t, int32(0), h.cities.findCalls.Load())
	})

	t.Run("results are not cached", func(t *testing.T) {
		h := newHarness(t)
		h.countries.ByNameFunc = japan
		svc := h.start(t)

		svc.Search(ctx, "ja")
		svc.Search(ctx, "ja")

		assert.Equal(t, int32(2), h.countries.byNameCalls.Load())
	})
}
