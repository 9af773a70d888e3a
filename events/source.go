// Package events wraps the external product-analytics service that captures
// raw page views and impressions. The engine never derives these numbers
// itself; the rollup consumes them through the EventSource contract.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"proplead/config"
	"proplead/utils"
)

// Event types understood by the upstream capture pipeline.
const (
	EventListingView       = "listing_view"
	EventListingViewUnique = "listing_view_unique"
	EventListingImpression = "listing_impression"
)

// Dimensions for grouped queries.
const (
	DimensionReferrer       = "referrer"
	DimensionVisitorType    = "visitor_type"
	DimensionImpressionKind = "impression_kind"
)

// Filter narrows a query to one listing.
type Filter struct {
	ListingID uint
}

// TimeRange is the inclusive-start, exclusive-end query window.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// EventSource supplies raw view/impression numbers the rollup cannot derive
// itself. Implementations must bound every call; the rollup treats a timeout
// as a per-listing failure, not a fatal abort.
type EventSource interface {
	GetEventCounts(ctx context.Context, eventTypes []string, filter Filter, tr TimeRange) (map[string]int64, error)
	GetEventsGroupedBy(ctx context.Context, eventType, dimension string, filter Filter, tr TimeRange) (map[string]int64, error)
}

// HTTPSource talks to the analytics service over its HTTP API.
type HTTPSource struct {
	cfg config.EventSourceConfig
}

func NewHTTPSource(cfg config.EventSourceConfig) *HTTPSource {
	return &HTTPSource{cfg: cfg}
}

type countsResponse struct {
	Counts map[string]int64 `json:"counts"`
}

func (s *HTTPSource) GetEventCounts(ctx context.Context, eventTypes []string, filter Filter, tr TimeRange) (map[string]int64, error) {
	query := fmt.Sprintf("events=%s&listing_id=%d&start=%s&end=%s",
		strings.Join(eventTypes, ","),
		filter.ListingID,
		tr.Start.UTC().Format(time.RFC3339),
		tr.End.UTC().Format(time.RFC3339),
	)
	return s.fetchCounts(ctx, "/api/v1/events/counts", query)
}

func (s *HTTPSource) GetEventsGroupedBy(ctx context.Context, eventType, dimension string, filter Filter, tr TimeRange) (map[string]int64, error) {
	query := fmt.Sprintf("event=%s&dimension=%s&listing_id=%d&start=%s&end=%s",
		eventType,
		dimension,
		filter.ListingID,
		tr.Start.UTC().Format(time.RFC3339),
		tr.End.UTC().Format(time.RFC3339),
	)
	return s.fetchCounts(ctx, "/api/v1/events/breakdown", query)
}

func (s *HTTPSource) fetchCounts(ctx context.Context, path, query string) (map[string]int64, error) {
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: event source deadline exceeded", utils.ErrUpstreamUnavailable)
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Get(s.cfg.BaseURL + path)
	agent.QueryString(query)
	agent.Timeout(timeout)
	if s.cfg.APIKey != "" {
		agent.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: event source request failed: %v", utils.ErrUpstreamUnavailable, errs[0])
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("%w: event source returned status %d", utils.ErrUpstreamUnavailable, code)
	}

	var parsed countsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed event source response: %v", utils.ErrUpstreamUnavailable, err)
	}
	if parsed.Counts == nil {
		parsed.Counts = map[string]int64{}
	}
	return parsed.Counts, nil
}
