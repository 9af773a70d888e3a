package models

import (
	"time"

	"gorm.io/gorm"
)

// ListingAnalyticsRecord is one precomputed daily aggregate per
// (listing_id, date). It is written only by the rollup job through an
// idempotent upsert and is read-only to dashboard consumers.
type ListingAnalyticsRecord struct {
	gorm.Model
	ListingID uint      `gorm:"not null;uniqueIndex:idx_listing_analytics_day" json:"listing_id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_listing_analytics_day" json:"date"`

	// View metrics
	TotalViews       int64 `gorm:"default:0" json:"total_views"`
	UniqueViews      int64 `gorm:"default:0" json:"unique_views"`
	LoggedInViews    int64 `gorm:"default:0" json:"logged_in_views"`
	AnonymousViews   int64 `gorm:"default:0" json:"anonymous_views"`
	ViewsFromHome    int64 `gorm:"default:0" json:"views_from_home"`
	ViewsFromExplore int64 `gorm:"default:0" json:"views_from_explore"`
	ViewsFromSearch  int64 `gorm:"default:0" json:"views_from_search"`
	ViewsFromDirect  int64 `gorm:"default:0" json:"views_from_direct"`

	// Impression metrics
	TotalImpressions       int64 `gorm:"default:0" json:"total_impressions"`
	ImpressionSocialMedia  int64 `gorm:"default:0" json:"impression_social_media"`
	ImpressionWebsiteVisit int64 `gorm:"default:0" json:"impression_website_visit"`
	ImpressionShare        int64 `gorm:"default:0" json:"impression_share"`
	ImpressionSavedListing int64 `gorm:"default:0" json:"impression_saved_listing"`

	// Lead metrics
	TotalLeads       int64 `gorm:"default:0" json:"total_leads"`
	PhoneLeads       int64 `gorm:"default:0" json:"phone_leads"`
	MessageLeads     int64 `gorm:"default:0" json:"message_leads"`
	EmailLeads       int64 `gorm:"default:0" json:"email_leads"`
	AppointmentLeads int64 `gorm:"default:0" json:"appointment_leads"`
	WebsiteLeads     int64 `gorm:"default:0" json:"website_leads"`
	UniqueLeads      int64 `gorm:"default:0" json:"unique_leads"`

	// Sales metrics
	TotalSales     int64   `gorm:"default:0" json:"total_sales"`
	SalesValue     float64 `gorm:"default:0" json:"sales_value"`
	AvgSalePrice   float64 `gorm:"default:0" json:"avg_sale_price"`
	ConversionRate float64 `gorm:"default:0" json:"conversion_rate"`
	LeadToSaleRate float64 `gorm:"default:0" json:"lead_to_sale_rate"`
}
