package geodb_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/illmade-knight/go-destinations/pkg/providers/geodb"
	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://geodb.example.test/v1/geo"

func newTestClient(t *testing.T, apiKey string) *geodb.Client {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	shared := providers.NewClient(providers.ClientConfig{Timeout: time.Second}, httpClient, zerolog.Nop())
	client, err := geodb.NewClient(geodb.Config{BaseURL: baseURL, APIKey: apiKey, Host: "geodb.example.test"}, shared, zerolog.Nop())
	require.NoError(t, err)
	return client
}

const citiesBody = `{
  "data": [
    {"id": 3453, "type": "CITY", "city": "Mumbai", "name": "Mumbai", "country": "India", "countryCode": "IN",
     "region": "Maharashtra", "latitude": 18.975, "longitude": 72.825833, "population": 12691836},
    {"id": 3089, "type": "CITY", "city": "Pune", "name": "Pune", "country": "India", "countryCode": "IN",
     "region": "Maharashtra", "latitude": 18.52, "longitude": 73.85, "population": 3124458, "distance": 118.4}
  ],
  "metadata": {"currentOffset": 0, "totalCount": 2}
}`

func TestCitiesByCountry(t *testing.T) {
	client := newTestClient(t, "test-key")
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/cities",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "test-key", req.Header.Get("x-rapidapi-key"))
			assert.Equal(t, "geodb.example.test", req.Header.Get("x-rapidapi-host"))
			q := req.URL.Query()
			assert.Equal(t, "IN", q.Get("countryIds"))
			assert.Equal(t, "CITY", q.Get("types"))
			assert.Equal(t, "-population", q.Get("sort"))
			assert.Equal(t, "10", q.Get("limit"))
			assert.Equal(t, "50000", q.Get("minPopulation"))
			return httpmock.NewStringResponse(http.StatusOK, citiesBody), nil
		})

	cities, err := client.CitiesByCountry(context.Background(), "IN", 10, 50000)

	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, int64(3453), cities[0].ID)
	assert.Equal(t, "Mumbai", cities[0].Name)
	assert.Equal(t, "India", cities[0].Country)
	assert.Equal(t, int64(12691836), cities[0].Population)
	assert.Nil(t, cities[0].Distance)
	require.NotNil(t, cities[1].Distance)
	assert.InDelta(t, 118.4, *cities[1].Distance, 0.001)
}

func TestNearbyCities_QueryShape(t *testing.T) {
	client := newTestClient(t, "test-key")
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/cities/3453/nearbyCities",
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "300", q.Get("radius"))
			assert.Equal(t, "KM", q.Get("distanceUnit"))
			assert.Equal(t, "5", q.Get("limit"))
			return httpmock.NewStringResponse(http.StatusOK, citiesBody), nil
		})

	cities, err := client.NearbyCities(context.Background(), 3453, 300, 5, 50000)

	require.NoError(t, err)
	assert.Len(t, cities, 2)
}

func TestFindCities_RateLimited(t *testing.T) {
	client := newTestClient(t, "test-key")
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/cities",
		httpmock.NewStringResponder(http.StatusTooManyRequests, `{"message":"Too many requests"}`))

	_, err := client.FindCities(context.Background(), "Pune", 5)

	require.Error(t, err)
	assert.True(t, providers.IsRateLimited(err))
}

func TestMissingKeyFailsFast(t *testing.T) {
	client := newTestClient(t, "")

	_, err := client.FindCities(context.Background(), "Pune", 5)

	assert.ErrorIs(t, err, providers.ErrMissingCredentials)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestNewClient_Validation(t *testing.T) {
	_, err := geodb.NewClient(geodb.Config{BaseURL: baseURL}, nil, zerolog.Nop())
	require.Error(t, err)

	shared := providers.NewClient(providers.ClientConfig{}, nil, zerolog.Nop())
	_, err = geodb.NewClient(geodb.Config{}, shared, zerolog.Nop())
	require.Error(t, err)
}
