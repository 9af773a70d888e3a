package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proplead/config"
	"proplead/utils"
)

func TestGetEventCounts_ParsesResponse(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"counts":{"listing_view":42,"listing_view_unique":30}}`))
	}))
	defer srv.Close()

	source := NewHTTPSource(config.EventSourceConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
	})

	window := TimeRange{
		Start: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	counts, err := source.GetEventCounts(context.Background(), []string{EventListingView, EventListingViewUnique}, Filter{ListingID: 7}, window)

	require.NoError(t, err)
	assert.Equal(t, int64(42), counts[EventListingView])
	assert.Equal(t, int64(30), counts[EventListingViewUnique])
	assert.Equal(t, "/api/v1/events/counts", gotPath)
	assert.Equal(t, []string{"7"}, gotQuery["listing_id"])
	assert.Equal(t, []string{"listing_view,listing_view_unique"}, gotQuery["events"])
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestGetEventsGroupedBy_ParsesBreakdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/events/breakdown", r.URL.Path)
		w.Write([]byte(`{"counts":{"home":10,"search":25}}`))
	}))
	defer srv.Close()

	source := NewHTTPSource(config.EventSourceConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second})

	counts, err := source.GetEventsGroupedBy(context.Background(), EventListingView, DimensionReferrer, Filter{ListingID: 7}, TimeRange{Start: time.Now().Add(-24 * time.Hour), End: time.Now()})

	require.NoError(t, err)
	assert.Equal(t, int64(10), counts["home"])
	assert.Equal(t, int64(25), counts["search"])
}

func TestGetEventCounts_Non200IsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	source := NewHTTPSource(config.EventSourceConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second})

	_, err := source.GetEventCounts(context.Background(), []string{EventListingView}, Filter{ListingID: 7}, TimeRange{Start: time.Now(), End: time.Now()})

	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
}

func TestGetEventCounts_MalformedBodyIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	source := NewHTTPSource(config.EventSourceConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second})

	_, err := source.GetEventCounts(context.Background(), []string{EventListingView}, Filter{ListingID: 7}, TimeRange{Start: time.Now(), End: time.Now()})

	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
}

func TestGetEventCounts_UnreachableHostIsUpstreamUnavailable(t *testing.T) {
	source := NewHTTPSource(config.EventSourceConfig{BaseURL: "http://127.0.0.1:1", RequestTimeout: time.Second})

	_, err := source.GetEventCounts(context.Background(), []string{EventListingView}, Filter{ListingID: 7}, TimeRange{Start: time.Now(), End: time.Now()})

	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
}

func TestGetEventCounts_ExpiredDeadline(t *testing.T) {
	source := NewHTTPSource(config.EventSourceConfig{BaseURL: "http://127.0.0.1:1", RequestTimeout: time.Second})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := source.GetEventCounts(ctx, []string{EventListingView}, Filter{ListingID: 7}, TimeRange{Start: time.Now(), End: time.Now()})

	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
}

func TestGetEventCounts_MissingCountsKeyYieldsEmptyMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	source := NewHTTPSource(config.EventSourceConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second})

	counts, err := source.GetEventCounts(context.Background(), []string{EventListingView}, Filter{ListingID: 7}, TimeRange{Start: time.Now(), End: time.Now()})

	require.NoError(t, err)
	assert.NotNil(t, counts)
	assert.Empty(t, counts)
}
