package providers_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ProviderRequest(provider, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, provider+":"+outcome)
}

func newMockedClient(t *testing.T) (*providers.Client, *recordingObserver) {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	client := providers.NewClient(providers.ClientConfig{Timeout: time.Second}, httpClient, zerolog.Nop())
	observer := &recordingObserver{}
	client.SetObserver(observer)
	return client, observer
}

func TestClient_GetJSON(t *testing.T) {
	ctx := context.Background()
	const endpoint = "https://api.example.test/things"

	t.Run("Decodes a successful response", func(t *testing.T) {
		client, observer := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, endpoint,
			func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "secret", req.Header.Get("X-Key"))
				assert.NotEmpty(t, req.Header.Get("User-Agent"))
				return httpmock.NewStringResponse(http.StatusOK, `{"name":"Paris"}`), nil
			})

		var out struct {
			Name string `json:"name"`
		}
		err := client.GetJSON(ctx, "example", endpoint, http.Header{"X-Key": []string{"secret"}}, &out)

		require.NoError(t, err)
		assert.Equal(t, "Paris", out.Name)
		assert.Equal(t, []string{"example:ok"}, observer.outcomes)
	})

	t.Run("Non-success status yields StatusError", func(t *testing.T) {
		client, observer := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, endpoint, httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

		err := client.GetJSON(ctx, "example", endpoint, nil, &struct{}{})

		var statusErr *providers.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.False(t, providers.IsRateLimited(err))
		assert.Equal(t, []string{"example:error"}, observer.outcomes)
	})

	t.Run("HTTP 429 is rate limited", func(t *testing.T) {
		client, observer := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, endpoint, httpmock.NewStringResponder(http.StatusTooManyRequests, ""))

		err := client.GetJSON(ctx, "example", endpoint, nil, &struct{}{})

		assert.True(t, providers.IsRateLimited(err))
		assert.True(t, errors.Is(err, providers.ErrRateLimited))
		assert.Equal(t, []string{"example:rate_limited"}, observer.outcomes)
	})

	t.Run("Exhausted quota header is rate limited", func(t *testing.T) {
		client, _ := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, endpoint, func(*http.Request) (*http.Response, error) {
			resp := httpmock.NewStringResponse(http.StatusForbidden, "Rate Limit Exceeded")
			resp.Header.Set("X-Ratelimit-Remaining", "0")
			return resp, nil
		})

		err := client.GetJSON(ctx, "example", endpoint, nil, &struct{}{})

		assert.True(t, providers.IsRateLimited(err))
	})

	t.Run("404 matches ErrNotFound", func(t *testing.T) {
		client, _ := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, endpoint, httpmock.NewStringResponder(http.StatusNotFound, ""))

		err := client.GetJSON(ctx, "example", endpoint, nil, &struct{}{})

		assert.ErrorIs(t, err, providers.ErrNotFound)
	})

	t.Run("Malformed body is an error", func(t *testing.T) {
		client, _ := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, endpoint, httpmock.NewStringResponder(http.StatusOK, "<html>"))

		err := client.GetJSON(ctx, "example", endpoint, nil, &struct{}{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed response")
	})

	t.Run("Transport failure is an error", func(t *testing.T) {
		client, _ := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, endpoint, httpmock.NewErrorResponder(errors.New("connection reset")))

		err := client.GetJSON(ctx, "example", endpoint, nil, &struct{}{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "request failed")
	})
}
