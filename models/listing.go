package models

import (
	"time"

	"gorm.io/gorm"
)

// Listing kinds
const (
	ListingKindUnit        = "listing"
	ListingKindDevelopment = "development"
)

// Listing is the read-side catalog entry for a property listing or a
// development project. CRUD lives outside this engine; the engine only reads
// titles, prices and thumbnails for decoration, and the active set for the
// daily rollup.
type Listing struct {
	gorm.Model
	ListerID   uint   `gorm:"not null;index" json:"lister_id"`
	ListerType string `gorm:"not null" json:"lister_type"`

	Kind         string  `gorm:"not null;default:'listing'" json:"kind"` // listing, development
	Title        string  `gorm:"not null" json:"title"`
	Price        float64 `json:"price"`
	Currency     string  `gorm:"default:'USD'" json:"currency"`
	ThumbnailURL string  `json:"thumbnail_url"`
	IsActive     bool    `gorm:"default:true;index" json:"is_active"`
}

// Sale records a closed sale for a listing.
type Sale struct {
	gorm.Model
	ListingID     uint      `gorm:"not null;index" json:"listing_id"`
	ListerID      uint      `gorm:"not null;index" json:"lister_id"`
	BuyerSeekerID string    `json:"buyer_seeker_id"`
	SalePrice     float64   `gorm:"not null" json:"sale_price"`
	SaleDate      time.Time `gorm:"not null;index" json:"sale_date"`

	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
}
