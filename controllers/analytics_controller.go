package controller

import (
	"crypto/subtle"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"proplead/cache"
	"proplead/config"
	"proplead/models"
	"proplead/utils"
	"proplead/worker"
)

type AnalyticsController struct {
	DB      *gorm.DB
	Logger  *log.Logger
	Catalog cache.CatalogCache
	Rollup  *worker.RollupWorker
}

func NewAnalyticsController(db *gorm.DB, logger *log.Logger, catalog cache.CatalogCache, rollup *worker.RollupWorker) *AnalyticsController {
	return &AnalyticsController{
		DB:      db,
		Logger:  logger,
		Catalog: catalog,
		Rollup:  rollup,
	}
}

// analyticsTotals aggregates the stored daily records over a date range.
type analyticsTotals struct {
	TotalViews       int64   `json:"total_views"`
	UniqueViews      int64   `json:"unique_views"`
	TotalImpressions int64   `json:"total_impressions"`
	TotalLeads       int64   `json:"total_leads"`
	UniqueLeads      int64   `json:"unique_leads"`
	TotalSales       int64   `json:"total_sales"`
	SalesValue       float64 `json:"sales_value"`
	ConversionRate   float64 `json:"conversion_rate"`
	LeadToSaleRate   float64 `json:"lead_to_sale_rate"`
}

// GetListingAnalytics returns totals and a daily time series for one listing
// over a date range (default last 30 days). Catalog decoration goes through
// the read-through cache and silently falls back to the database.
func (ac *AnalyticsController) GetListingAnalytics(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	listingID := utils.ParseUint(c.Params("id"))
	if listingID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing id", utils.ErrInvalidInput)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	var err error
	if s := c.Query("start"); s != "" {
		if start, err = utils.ParseDate(s); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD", utils.ErrInvalidInput)
		}
	}
	if e := c.Query("end"); e != "" {
		if end, err = utils.ParseDate(e); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD", utils.ErrInvalidInput)
		}
	}
	if end.Before(start) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "end date before start date", utils.ErrInvalidInput)
	}

	listing, err := cache.FetchListing(c.Context(), ac.DB, ac.Catalog, listingID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Listing not found", utils.ErrNotFound)
	}
	if listing.ListerID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Listing not found", utils.ErrNotFound)
	}

	var records []models.ListingAnalyticsRecord
	if err := ac.DB.Where("listing_id = ? AND date >= ? AND date <= ?", listingID, start, end).
		Order("date ASC").
		Find(&records).Error; err != nil {
		utils.LogError("analytics_fetch_failed", err, map[string]interface{}{
			"listing_id": listingID,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch analytics", err)
	}

	var totals analyticsTotals
	for i := range records {
		totals.TotalViews += records[i].TotalViews
		totals.UniqueViews += records[i].UniqueViews
		totals.TotalImpressions += records[i].TotalImpressions
		totals.TotalLeads += records[i].TotalLeads
		totals.UniqueLeads += records[i].UniqueLeads
		totals.TotalSales += records[i].TotalSales
		totals.SalesValue += records[i].SalesValue
	}
	if totals.TotalViews > 0 {
		totals.ConversionRate = float64(totals.TotalLeads) / float64(totals.TotalViews) * 100
	}
	if totals.TotalLeads > 0 {
		totals.LeadToSaleRate = float64(totals.TotalSales) / float64(totals.TotalLeads) * 100
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"listing": fiber.Map{
			"id":            listing.ID,
			"title":         listing.Title,
			"price":         listing.Price,
			"currency":      listing.Currency,
			"thumbnail_url": listing.ThumbnailURL,
		},
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
		"totals": totals,
		"daily":  records,
	}))
}

// TriggerRollup runs the daily rollup on demand for one date. The endpoint
// is protected by a shared secret rather than a user credential because the
// caller is a scheduler, and the run is idempotent per date.
func (ac *AnalyticsController) TriggerRollup(c *fiber.Ctx) error {
	if !validRollupSecret(c.Get("X-Rollup-Secret")) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid rollup secret",
		})
	}

	date := time.Now()
	if d := c.Query("date"); d != "" {
		var err error
		if date, err = utils.ParseDate(d); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", utils.ErrInvalidInput)
		}
	}

	processed, failed, err := ac.Rollup.RunForDate(c.Context(), date)
	if err != nil {
		utils.LogError("rollup_run_failed", err, map[string]interface{}{
			"date": date.Format("2006-01-02"),
		})
		return utils.ErrorResponse(c, utils.HTTPStatus(err), "Rollup run failed", err)
	}

	ac.Logger.Printf("Manual rollup for %s: %d processed, %d failed", date.Format("2006-01-02"), processed, failed)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"date":      date.Format("2006-01-02"),
		"processed": processed,
		"failed":    failed,
	}))
}

// validRollupSecret compares in constant time so the shared secret cannot be
// probed byte by byte through response timing.
func validRollupSecret(got string) bool {
	want := config.AppConfig.RollupSecret
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
