package worker

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"proplead/analytics"
	"proplead/models"
)

// GormRollupStore backs RollupStore with the primary database.
type GormRollupStore struct {
	DB *gorm.DB
}

func NewGormRollupStore(db *gorm.DB) *GormRollupStore {
	return &GormRollupStore{DB: db}
}

func (s *GormRollupStore) ActiveListingIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).
		Model(&models.Listing{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}

// LeadTotalsForDay counts the actions recorded that day against the listing,
// split by action type. Candidate leads are narrowed in SQL by the cached
// first/last action dates, then the JSON append logs are folded in Go.
func (s *GormRollupStore) LeadTotalsForDay(ctx context.Context, listingID uint, day time.Time) (analytics.LeadTotals, error) {
	start := day
	end := day.AddDate(0, 0, 1)

	var leads []models.Lead
	err := s.DB.WithContext(ctx).
		Where("listing_id = ? AND last_action_date >= ? AND first_action_date < ?", listingID, start, end).
		Find(&leads).Error
	if err != nil {
		return analytics.LeadTotals{}, err
	}

	return analytics.LeadTotalsForWindow(leads, start, end), nil
}

func (s *GormRollupStore) SaleTotalsForDay(ctx context.Context, listingID uint, day time.Time) (analytics.SaleTotals, error) {
	start := day
	end := day.AddDate(0, 0, 1)

	var totals analytics.SaleTotals
	err := s.DB.WithContext(ctx).
		Model(&models.Sale{}).
		Where("listing_id = ? AND sale_date >= ? AND sale_date < ?", listingID, start, end).
		Select("COUNT(*) as count, COALESCE(SUM(sale_price), 0) as value").
		Scan(&totals).Error
	return totals, err
}

// UpsertRecord writes the daily record keyed on (listing_id, date). The ON
// CONFLICT upsert keeps concurrent and repeated runs idempotent: never an
// insert-duplicate, always an overwrite of the same row.
func (s *GormRollupStore) UpsertRecord(ctx context.Context, rec *models.ListingAnalyticsRecord) error {
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}, {Name: "date"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}
