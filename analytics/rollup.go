package analytics

import (
	"time"

	"proplead/models"
)

// ViewCounts are the raw per-day view numbers supplied by the event source.
type ViewCounts struct {
	Total     int64
	Unique    int64
	LoggedIn  int64
	Anonymous int64
	Home      int64
	Explore   int64
	Search    int64
	Direct    int64
}

// ImpressionCounts are the raw per-day impression numbers.
type ImpressionCounts struct {
	Total        int64
	SocialMedia  int64
	WebsiteVisit int64
	Share        int64
	SavedListing int64
}

// LeadTotals are the per-day lead action counts split by action type.
type LeadTotals struct {
	Total       int64
	Phone       int64
	Message     int64
	Email       int64
	Appointment int64
	Website     int64
	Unique      int64
}

// SaleTotals are the per-day closed-sale counts and value.
type SaleTotals struct {
	Count int64
	Value float64
}

// RollupInput bundles everything the daily rollup needs for one listing.
type RollupInput struct {
	Views       ViewCounts
	Impressions ImpressionCounts
	Leads       LeadTotals
	Sales       SaleTotals
}

// BuildDailyRecord assembles the analytics record for one (listing, date)
// pair and computes the derived rates. unique_views is clamped to
// total_views. The output is deterministic for the same input, so re-running
// the rollup upserts an identical row.
func BuildDailyRecord(listingID uint, date time.Time, in RollupInput) models.ListingAnalyticsRecord {
	views := in.Views
	if views.Unique > views.Total {
		views.Unique = views.Total
	}

	rec := models.ListingAnalyticsRecord{
		ListingID: listingID,
		Date:      date,

		TotalViews:       views.Total,
		UniqueViews:      views.Unique,
		LoggedInViews:    views.LoggedIn,
		AnonymousViews:   views.Anonymous,
		ViewsFromHome:    views.Home,
		ViewsFromExplore: views.Explore,
		ViewsFromSearch:  views.Search,
		ViewsFromDirect:  views.Direct,

		TotalImpressions:       in.Impressions.Total,
		ImpressionSocialMedia:  in.Impressions.SocialMedia,
		ImpressionWebsiteVisit: in.Impressions.WebsiteVisit,
		ImpressionShare:        in.Impressions.Share,
		ImpressionSavedListing: in.Impressions.SavedListing,

		TotalLeads:       in.Leads.Total,
		PhoneLeads:       in.Leads.Phone,
		MessageLeads:     in.Leads.Message,
		EmailLeads:       in.Leads.Email,
		AppointmentLeads: in.Leads.Appointment,
		WebsiteLeads:     in.Leads.Website,
		UniqueLeads:      in.Leads.Unique,

		TotalSales: in.Sales.Count,
		SalesValue: in.Sales.Value,
	}

	if rec.TotalViews > 0 {
		rec.ConversionRate = float64(rec.TotalLeads) / float64(rec.TotalViews) * 100
	}
	if rec.TotalLeads > 0 {
		rec.LeadToSaleRate = float64(rec.TotalSales) / float64(rec.TotalLeads) * 100
	}
	if rec.TotalSales > 0 {
		rec.AvgSalePrice = rec.SalesValue / float64(rec.TotalSales)
	}
	return rec
}

// LeadTotalsForWindow counts the actions recorded inside [start, end) across
// the given leads, split by action type. Unique counts distinct seekers that
// acted in the window. Leads with malformed action logs are skipped.
func LeadTotalsForWindow(leads []models.Lead, start, end time.Time) LeadTotals {
	var totals LeadTotals
	seekers := make(map[string]bool)

	for i := range leads {
		actions, err := leads[i].Actions()
		if err != nil {
			continue
		}
		acted := false
		for _, a := range actions {
			if a.Timestamp.Before(start) || !a.Timestamp.Before(end) {
				continue
			}
			acted = true
			totals.Total++
			switch a.ActionType {
			case models.ActionPhoneClick, models.ActionWhatsappClick:
				totals.Phone++
			case models.ActionDirectMessage:
				totals.Message++
			case models.ActionEmail:
				totals.Email++
			case models.ActionAppointmentRequest:
				totals.Appointment++
			case models.ActionWebsiteClick:
				totals.Website++
			}
		}
		if acted && !seekers[leads[i].SeekerID] {
			seekers[leads[i].SeekerID] = true
			totals.Unique++
		}
	}
	return totals
}
