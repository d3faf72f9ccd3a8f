package cron

import (
	"fmt"
	"log"
	"time"

	"diyari_backend/internal/model"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

func InitFeaturedExpiryCron(c *cron.Cron, db *gorm.DB) error {
	_, err := c.AddFunc("@hourly", func() {
		n, err := ExpireFeaturedListings(db, time.Now())
		if err != nil {
			log.Printf("Error expiring featured listings: %v", err)
			return
		}
		if n > 0 {
			log.Printf("Un-featured %d expired listings", n)
		}
	})
	if err != nil {
		return fmt.Errorf("could not initialize featured expiry cron: %w", err)
	}
	return nil
}

// ExpireFeaturedListings clears the featured flag on listings whose paid
// period ended before now. Listings featured without an end date stay.
func ExpireFeaturedListings(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&model.Property{}).
		Where("is_featured = ? AND featured_until IS NOT NULL AND featured_until < ?", true, now).
		Updates(map[string]interface{}{
			"is_featured":    false,
			"featured_until": nil,
		})
	return result.RowsAffected, result.Error
}
