package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/illmade-knight/go-destinations/pkg/types"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countriesURL = "https://restcountries.com/v3.1/all"

func newMockedClient(t *testing.T) *http.Client {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func runCLI(t *testing.T, client *http.Client, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	base := []string{"--cache-backend", "memory", "--env-file", ""}
	err := run(context.Background(), append(base, args...), &stdout, &stderr, client)
	return stdout.String(), err
}

func TestRun_Countries(t *testing.T) {
	t.Chdir(t.TempDir())
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, countriesURL, httpmock.NewStringResponder(http.StatusOK,
		`[{"name": {"common": "Peru"}, "cca2": "PE", "region": "Americas", "capital": ["Lima"]},
		  {"name": {"common": "Chile"}, "cca2": "CL", "region": "Americas", "capital": ["Santiago"]}]`))

	out, err := runCLI(t, client, "countries")

	require.NoError(t, err)
	var countries []types.Country
	require.NoError(t, json.Unmarshal([]byte(out), &countries))
	require.Len(t, countries, 2)
	assert.Equal(t, "Chile", countries[0].CommonName)
	assert.Equal(t, "Lima", countries[1].Capital)
}

func TestRun_WritesMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, countriesURL, httpmock.NewStringResponder(http.StatusOK, `[]`))
	path := filepath.Join(dir, "destinations.prom")

	_, err := runCLI(t, client, "--metrics-textfile", path, "countries")

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `destinations_provider_requests_total{outcome="ok",provider="restcountries"} 1`)
	assert.Contains(t, string(data), `destinations_cache_lookups_total{resource="countries",result="miss"} 1`)
}

func TestRun_ImageFallsBackToPlaceholder(t *testing.T) {
	t.Chdir(t.TempDir())
	client := newMockedClient(t)

	out, err := runCLI(t, client, "image", "Machu", "Picchu")

	require.NoError(t, err)
	var result imageResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Placeholder)
	require.Len(t, result.URLs, 1)
	assert.Contains(t, result.URLs[0], "https://loremflickr.com/800/600/machu,picchu?lock=")
	assert.Equal(t, 0, httpmock.GetTotalCallCount(), "no photo call is made without a key")
}

func TestRun_Wishlist(t *testing.T) {
	t.Chdir(t.TempDir())
	client := newMockedClient(t)

	out, err := runCLI(t, client, "wishlist", "toggle", "city", "cusco", "Cusco")

	require.NoError(t, err)
	assert.JSONEq(t, `{"saved": true}`, out)
}

func TestRun_Profile(t *testing.T) {
	t.Chdir(t.TempDir())
	client := newMockedClient(t)

	out, err := runCLI(t, client, "profile", "New", "Delhi")
	require.NoError(t, err)
	assert.Contains(t, out, "The cultural and political heart of India")

	_, err = runCLI(t, client, "profile", "Lima")
	assert.Error(t, err)
}

func TestRun_CacheInvalidateNeedsKeys(t *testing.T) {
	t.Chdir(t.TempDir())
	client := newMockedClient(t)

	_, err := runCLI(t, client, "cache", "invalidate")
	assert.ErrorContains(t, err, "nothing to invalidate")

	out, err := runCLI(t, client, "cache", "invalidate", "--cities", "pe", "--limit", "3", "--countries")
	require.NoError(t, err)
	assert.JSONEq(t, `{"invalidated": ["cities_v2_PE_3", "all_countries_cache"]}`, out)
}
