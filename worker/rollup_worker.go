package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"proplead/analytics"
	"proplead/events"
	"proplead/models"
)

// RollupStore is the persistence surface the rollup job needs. It is an
// interface so the job can be exercised against mocks.
type RollupStore interface {
	ActiveListingIDs(ctx context.Context) ([]uint, error)
	LeadTotalsForDay(ctx context.Context, listingID uint, day time.Time) (analytics.LeadTotals, error)
	SaleTotalsForDay(ctx context.Context, listingID uint, day time.Time) (analytics.SaleTotals, error)
	UpsertRecord(ctx context.Context, rec *models.ListingAnalyticsRecord) error
}

// RollupWorker periodically folds raw event counts, lead actions and sales
// into one ListingAnalyticsRecord per (listing, date). Re-running for the
// same key upserts the same row, so retries and overlapping runs are safe.
type RollupWorker struct {
	Store  RollupStore
	Source events.EventSource
	Logger *log.Logger

	Interval       time.Duration
	ListingTimeout time.Duration
}

func NewRollupWorker(store RollupStore, source events.EventSource, logger *log.Logger, interval, listingTimeout time.Duration) *RollupWorker {
	return &RollupWorker{
		Store:          store,
		Source:         source,
		Logger:         logger,
		Interval:       interval,
		ListingTimeout: listingTimeout,
	}
}

func (rw *RollupWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	select {
	case <-ctx.Done():
		return
	case <-time.After(10 * time.Second):
	}

	rw.Logger.Println("Rollup worker started")

	ticker := time.NewTicker(rw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Rollup worker shutting down...")
			return
		case <-ticker.C:
			processed, failed, err := rw.RunForDate(ctx, time.Now())
			if err != nil {
				rw.Logger.Printf("Rollup run failed: %v", err)
				continue
			}
			rw.Logger.Printf("Rollup run complete: %d listings processed, %d failed", processed, failed)
		}
	}
}

// RunForDate computes the daily rollup for every active listing. A failure
// on one listing is logged and skipped; the run continues with the
// remainder. Cancellation stops issuing further per-listing work, the
// listing in flight completes.
func (rw *RollupWorker) RunForDate(ctx context.Context, date time.Time) (processed, failed int, err error) {
	listingIDs, err := rw.Store.ActiveListingIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list active listings: %w", err)
	}

	day := startOfDay(date)
	for _, listingID := range listingIDs {
		select {
		case <-ctx.Done():
			return processed, failed, ctx.Err()
		default:
		}

		if err := rw.rollupListing(ctx, listingID, day); err != nil {
			failed++
			rw.Logger.Printf("Rollup failed for listing %d on %s: %v", listingID, day.Format("2006-01-02"), err)
			continue
		}
		processed++
	}
	return processed, failed, nil
}

func (rw *RollupWorker) rollupListing(ctx context.Context, listingID uint, day time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, rw.ListingTimeout)
	defer cancel()

	input, err := rw.collectInput(ctx, listingID, day)
	if err != nil {
		return err
	}

	rec := analytics.BuildDailyRecord(listingID, day, input)
	return rw.Store.UpsertRecord(ctx, &rec)
}

func (rw *RollupWorker) collectInput(ctx context.Context, listingID uint, day time.Time) (analytics.RollupInput, error) {
	var input analytics.RollupInput

	filter := events.Filter{ListingID: listingID}
	window := events.TimeRange{Start: day, End: day.AddDate(0, 0, 1)}

	counts, err := rw.Source.GetEventCounts(ctx, []string{
		events.EventListingView,
		events.EventListingViewUnique,
		events.EventListingImpression,
	}, filter, window)
	if err != nil {
		return input, fmt.Errorf("event counts: %w", err)
	}

	byReferrer, err := rw.Source.GetEventsGroupedBy(ctx, events.EventListingView, events.DimensionReferrer, filter, window)
	if err != nil {
		return input, fmt.Errorf("view referrer breakdown: %w", err)
	}

	byVisitor, err := rw.Source.GetEventsGroupedBy(ctx, events.EventListingView, events.DimensionVisitorType, filter, window)
	if err != nil {
		return input, fmt.Errorf("view visitor breakdown: %w", err)
	}

	byImpression, err := rw.Source.GetEventsGroupedBy(ctx, events.EventListingImpression, events.DimensionImpressionKind, filter, window)
	if err != nil {
		return input, fmt.Errorf("impression breakdown: %w", err)
	}

	input.Views = analytics.ViewCounts{
		Total:     counts[events.EventListingView],
		Unique:    counts[events.EventListingViewUnique],
		LoggedIn:  byVisitor["logged_in"],
		Anonymous: byVisitor["anonymous"],
		Home:      byReferrer["home"],
		Explore:   byReferrer["explore"],
		Search:    byReferrer["search"],
		Direct:    byReferrer["direct"],
	}
	input.Impressions = analytics.ImpressionCounts{
		Total:        counts[events.EventListingImpression],
		SocialMedia:  byImpression["social_media"],
		WebsiteVisit: byImpression["website_visit"],
		Share:        byImpression["share"],
		SavedListing: byImpression["saved_listing"],
	}

	input.Leads, err = rw.Store.LeadTotalsForDay(ctx, listingID, day)
	if err != nil {
		return input, fmt.Errorf("lead totals: %w", err)
	}

	input.Sales, err = rw.Store.SaleTotalsForDay(ctx, listingID, day)
	if err != nil {
		return input, fmt.Errorf("sale totals: %w", err)
	}

	return input, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
