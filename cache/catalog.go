// Package cache holds the read-through accelerator for static catalog data.
// It is best-effort everywhere: a cache failure never fails the primary
// operation, reads just fall back to the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"proplead/config"
	"proplead/models"
)

const listingTTL = 15 * time.Minute

// CatalogCache is the injected capability for cached catalog reads. It can be
// swapped for a no-op in tests or when Redis is disabled.
type CatalogCache interface {
	GetListing(ctx context.Context, id uint) (*models.Listing, bool)
	SetListing(ctx context.Context, listing *models.Listing)
	Invalidate(ctx context.Context, id uint)
}

// RedisCatalog backs CatalogCache with Redis.
type RedisCatalog struct {
	client *redis.Client
}

func NewRedisCatalog(cfg config.RedisConfig) *RedisCatalog {
	return &RedisCatalog{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func listingKey(id uint) string {
	return fmt.Sprintf("catalog:listing:%d", id)
}

func (r *RedisCatalog) GetListing(ctx context.Context, id uint) (*models.Listing, bool) {
	raw, err := r.client.Get(ctx, listingKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var listing models.Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, false
	}
	return &listing, true
}

func (r *RedisCatalog) SetListing(ctx context.Context, listing *models.Listing) {
	raw, err := json.Marshal(listing)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, listingKey(listing.ID), raw, listingTTL).Err()
}

func (r *RedisCatalog) Invalidate(ctx context.Context, id uint) {
	_ = r.client.Del(ctx, listingKey(id)).Err()
}

// NoopCatalog disables caching; every read goes to the database.
type NoopCatalog struct{}

func (NoopCatalog) GetListing(ctx context.Context, id uint) (*models.Listing, bool) { return nil, false }
func (NoopCatalog) SetListing(ctx context.Context, listing *models.Listing)         {}
func (NoopCatalog) Invalidate(ctx context.Context, id uint)                         {}

// NewCatalog picks the Redis cache when enabled, otherwise the no-op.
func NewCatalog(cfg config.RedisConfig) CatalogCache {
	if cfg.Enabled {
		return NewRedisCatalog(cfg)
	}
	return NoopCatalog{}
}

// FetchListing is the read-through path: cache first, then database, then a
// best-effort backfill of the cache.
func FetchListing(ctx context.Context, db *gorm.DB, catalog CatalogCache, id uint) (*models.Listing, error) {
	if listing, ok := catalog.GetListing(ctx, id); ok {
		return listing, nil
	}

	var listing models.Listing
	if err := db.WithContext(ctx).First(&listing, id).Error; err != nil {
		return nil, err
	}
	catalog.SetListing(ctx, &listing)
	return &listing, nil
}
