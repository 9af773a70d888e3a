package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proplead/models"
)

func TestBuildDailyRecord_Rates(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	rec := BuildDailyRecord(7, day, RollupInput{
		Views: ViewCounts{Total: 50, Unique: 30},
		Leads: LeadTotals{Total: 5},
		Sales: SaleTotals{Count: 1, Value: 400000},
	})

	assert.Equal(t, uint(7), rec.ListingID)
	assert.Equal(t, day, rec.Date)
	assert.InDelta(t, 10.0, rec.ConversionRate, 0.001)
	assert.InDelta(t, 20.0, rec.LeadToSaleRate, 0.001)
	assert.InDelta(t, 400000.0, rec.AvgSalePrice, 0.001)
}

func TestBuildDailyRecord_ZeroViewsMeansZeroConversion(t *testing.T) {
	rec := BuildDailyRecord(7, time.Now(), RollupInput{
		Leads: LeadTotals{Total: 5},
	})
	assert.InDelta(t, 0.0, rec.ConversionRate, 0.001)
	assert.InDelta(t, 0.0, rec.AvgSalePrice, 0.001)
}

func TestBuildDailyRecord_ZeroLeadsMeansZeroLeadToSale(t *testing.T) {
	rec := BuildDailyRecord(7, time.Now(), RollupInput{
		Views: ViewCounts{Total: 10},
		Sales: SaleTotals{Count: 2, Value: 100},
	})
	assert.InDelta(t, 0.0, rec.LeadToSaleRate, 0.001)
}

func TestBuildDailyRecord_ClampsUniqueViews(t *testing.T) {
	rec := BuildDailyRecord(7, time.Now(), RollupInput{
		Views: ViewCounts{Total: 10, Unique: 25},
	})
	assert.Equal(t, int64(10), rec.UniqueViews)
	assert.Equal(t, int64(10), rec.TotalViews)
}

func TestBuildDailyRecord_Deterministic(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	input := RollupInput{
		Views:       ViewCounts{Total: 100, Unique: 60, LoggedIn: 40, Anonymous: 60, Home: 10, Explore: 20, Search: 50, Direct: 20},
		Impressions: ImpressionCounts{Total: 500, SocialMedia: 200, WebsiteVisit: 150, Share: 100, SavedListing: 50},
		Leads:       LeadTotals{Total: 8, Phone: 3, Message: 2, Email: 1, Appointment: 1, Website: 1, Unique: 6},
		Sales:       SaleTotals{Count: 2, Value: 900000},
	}

	assert.Equal(t, BuildDailyRecord(7, day, input), BuildDailyRecord(7, day, input))
}

func TestLeadTotalsForWindow(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	inWindow := day.Add(9 * time.Hour)
	beforeWindow := day.Add(-time.Hour)

	leadA := models.Lead{SeekerID: "a"}
	require.NoError(t, leadA.AppendAction(models.LeadAction{ActionType: models.ActionPhoneClick, Channel: models.ChannelPhone, Timestamp: beforeWindow}))
	require.NoError(t, leadA.AppendAction(models.LeadAction{ActionType: models.ActionPhoneClick, Channel: models.ChannelPhone, Timestamp: inWindow}))
	require.NoError(t, leadA.AppendAction(models.LeadAction{ActionType: models.ActionDirectMessage, Channel: models.ChannelDirectMessage, Timestamp: inWindow.Add(time.Hour)}))

	leadB := models.Lead{SeekerID: "b"}
	require.NoError(t, leadB.AppendAction(models.LeadAction{ActionType: models.ActionAppointmentRequest, Channel: models.ChannelAppointment, Timestamp: inWindow}))

	// same seeker as A against another row: counted once for unique
	leadC := models.Lead{SeekerID: "a"}
	require.NoError(t, leadC.AppendAction(models.LeadAction{ActionType: models.ActionEmail, Channel: models.ChannelEmail, Timestamp: inWindow}))

	// entirely outside the window
	leadD := models.Lead{SeekerID: "d"}
	require.NoError(t, leadD.AppendAction(models.LeadAction{ActionType: models.ActionWebsiteClick, Channel: models.ChannelEmail, Timestamp: beforeWindow}))

	totals := LeadTotalsForWindow([]models.Lead{leadA, leadB, leadC, leadD}, day, day.AddDate(0, 0, 1))

	assert.Equal(t, int64(4), totals.Total)
	assert.Equal(t, int64(1), totals.Phone)
	assert.Equal(t, int64(1), totals.Message)
	assert.Equal(t, int64(1), totals.Email)
	assert.Equal(t, int64(1), totals.Appointment)
	assert.Equal(t, int64(0), totals.Website)
	assert.Equal(t, int64(2), totals.Unique)
}
