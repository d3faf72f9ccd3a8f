package cron

import (
	"fmt"
	"log"
	"time"

	"diyari_backend/internal/model"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const notificationRetention = 90 * 24 * time.Hour

func InitNotificationCleanupCron(c *cron.Cron, db *gorm.DB) error {
	// Daily at 03:00
	_, err := c.AddFunc("0 3 * * *", func() {
		n, err := PurgeReadNotifications(db, time.Now().Add(-notificationRetention))
		if err != nil {
			log.Printf("Error purging notifications: %v", err)
			return
		}
		log.Printf("Purged %d read notifications", n)
	})
	if err != nil {
		return fmt.Errorf("could not initialize notification cleanup cron: %w", err)
	}
	return nil
}

// PurgeReadNotifications deletes read notifications created before the cutoff.
// Unread ones are kept regardless of age.
func PurgeReadNotifications(db *gorm.DB, before time.Time) (int64, error) {
	result := db.Where("is_read = ? AND created_at < ?", true, before).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}
