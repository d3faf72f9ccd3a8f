package cron

import (
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Start registers every background job on one scheduler and starts it.
// The caller stops it on shutdown.
func Start(db *gorm.DB) (*cron.Cron, error) {
	c := cron.New()

	inits := []func(*cron.Cron, *gorm.DB) error{
		InitFeaturedExpiryCron,
		InitListingStatsCron,
		InitNotificationCleanupCron,
	}
	for _, register := range inits {
		if err := register(c, db); err != nil {
			return nil, err
		}
	}

	c.Start()
	log.Printf("Cron jobs initialized (%d entries)", len(c.Entries()))
	return c, nil
}
