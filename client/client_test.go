package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pulseboard/dashboard"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSummary(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"total_visits": 1000,
		"unique_users": 250,
		"api_hits": 5000,
		"endpoint_stats": {"/api/x": 10},
		"last_updated": "2026-10-19T10:00:00Z"
	}`)

	snap, err := New(srv.URL).Fetch(context.Background())
	require.NoError(t, err)

	require.NotNil(t, snap.TotalVisits)
	assert.Equal(t, int64(1000), *snap.TotalVisits)
	assert.Equal(t, int64(250), *snap.UniqueUsers)
	assert.Equal(t, int64(5000), *snap.APIHits)
	assert.Equal(t, dashboard.EndpointStat{Hits: 10}, snap.EndpointStats["/api/x"])
	require.NotNil(t, snap.LastUpdated)
	assert.Equal(t, time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC), snap.LastUpdated.UTC())
}

func TestDecodeKeepsMissingFieldsAbsent(t *testing.T) {
	snap, err := Decode([]byte(`{"total_visits": 0, "unique_users": null}`))
	require.NoError(t, err)

	require.NotNil(t, snap.TotalVisits)
	assert.Equal(t, int64(0), *snap.TotalVisits)
	assert.Nil(t, snap.UniqueUsers)
	assert.Nil(t, snap.APIHits)
	assert.Nil(t, snap.EndpointStats)
	assert.Nil(t, snap.LastUpdated)
}

func TestDecodeStatsRecords(t *testing.T) {
	snap, err := Decode([]byte(`{"endpoint_stats": {
		"/api/a": {"hits": 4, "errors": 1},
		"/api/b": {"count": 7, "label": "b"},
		"/api/c": {"errors": 2}
	}}`))
	require.NoError(t, err)

	a := snap.EndpointStats["/api/a"]
	assert.Equal(t, int64(4), a.Hits)
	assert.Equal(t, int64(1), a.Fields["errors"])
	assert.Equal(t, int64(7), snap.EndpointStats["/api/b"].Hits)
	assert.Equal(t, int64(0), snap.EndpointStats["/api/c"].Hits)
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	bad := []string{
		`not json`,
		`[1, 2]`,
		`{"total_visits": -1}`,
		`{"unique_users": "12"}`,
		`{"endpoint_stats": [1]}`,
		`{"endpoint_stats": {"/x": -3}}`,
		`{"endpoint_stats": {"/x": true}}`,
		`{"total_visits": 1.5}`,
		`{"api_hits": 1e3}`,
		`{"unique_users": 99999999999999999999}`,
		`{"endpoint_stats": {"/x": {"hits": 2.5}}}`,
	}
	for _, body := range bad {
		_, err := Decode([]byte(body))
		var fe *dashboard.FetchError
		assert.True(t, errors.As(err, &fe), "payload %s", body)
	}
}

func TestFetchServiceError(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, `{"error": "Failed to fetch analytics", "details": "db locked"}`)

	_, err := New(srv.URL).Fetch(context.Background())
	var fe *dashboard.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Failed to fetch analytics: db locked", fe.Message)
}

func TestFetchStatusWithoutBody(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, ``)

	_, err := New(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Bad Gateway", err.Error())
}

func TestFetchTransportError(t *testing.T) {
	srv := serve(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	_, err := New(url, WithTimeout(time.Second)).Fetch(context.Background())
	require.Error(t, err)
	assert.NotEmpty(t, err.Error())
}

func TestTimeoutOption(t *testing.T) {
	assert.Equal(t, defaultTimeout, New("http://example.com").http.Timeout)
	assert.Equal(t, 2*time.Second, New("http://example.com", WithTimeout(2*time.Second)).http.Timeout)
	assert.Equal(t, defaultTimeout, New("http://example.com", WithTimeout(0)).http.Timeout)
}

func TestTimeoutBoundsSlowService(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Fetch(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "http://example.com/base/api/analytics", New("http://example.com/base/").Endpoint())
	assert.Equal(t, "http://example.com/stats", New("http://example.com", WithPath("/stats")).Endpoint())
}

func TestClientDrivesView(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"total_visits": 1000, "unique_users": 250, "api_hits": 5000}`)

	v := dashboard.New(New(srv.URL))
	v.Mount(context.Background())
	defer v.Unmount()

	select {
	case <-v.Settled():
	case <-time.After(5 * time.Second):
		t.Fatal("view never settled")
	}
	html, err := dashboard.RenderString(v.State(), dashboard.NewFormatter(dashboard.DefaultLocale))
	require.NoError(t, err)
	assert.Contains(t, html, ">250<")
	assert.Contains(t, html, ">1,000<")
}
