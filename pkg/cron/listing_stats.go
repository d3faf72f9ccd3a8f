package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"diyari_backend/pkg/email"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

type ListingStats struct {
	UserID         uint
	Email          string
	Username       string
	FullName       string
	ActiveListings int64
	TotalViews     int64
	NewLikes       int64
	NewComments    int64
	NewInquiries   int64
	TopProperty    string
	TopViews       int64
}

func (s ListingStats) name() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Username
}

func InitListingStatsCron(c *cron.Cron, db *gorm.DB) error {
	// Sundays at 20:00
	_, err := c.AddFunc("0 20 * * 0", func() {
		sendWeeklyListingStats(db)
	})
	if err != nil {
		return fmt.Errorf("could not initialize listing stats cron: %w", err)
	}
	return nil
}

// CollectListingStats returns one row per user owning at least one active
// listing. Activity counters only consider rows created at or after since.
func CollectListingStats(db *gorm.DB, since time.Time) ([]ListingStats, error) {
	var stats []ListingStats
	err := db.Raw(`
        SELECT
            u.id AS user_id,
            u.email,
            u.username,
            u.full_name,
            (SELECT COUNT(*) FROM properties p WHERE p.user_id = u.id AND p.status = 'active') AS active_listings,
            (SELECT COALESCE(SUM(p.views_count), 0) FROM properties p WHERE p.user_id = u.id) AS total_views,
            (
                SELECT COUNT(*) FROM likes l
                JOIN properties p ON p.id = l.property_id
                WHERE p.user_id = u.id AND l.created_at >= ?
            ) AS new_likes,
            (
                SELECT COUNT(*) FROM comments cm
                JOIN properties p ON p.id = cm.property_id
                WHERE p.user_id = u.id AND cm.created_at >= ?
            ) AS new_comments,
            (
                SELECT COUNT(*) FROM messages m
                WHERE m.receiver_id = u.id AND m.message_type = 'property_inquiry' AND m.created_at >= ?
            ) AS new_inquiries,
            (
                SELECT p.title FROM properties p
                WHERE p.user_id = u.id
                ORDER BY p.views_count DESC, p.id ASC
                LIMIT 1
            ) AS top_property,
            (
                SELECT p.views_count FROM properties p
                WHERE p.user_id = u.id
                ORDER BY p.views_count DESC, p.id ASC
                LIMIT 1
            ) AS top_views
        FROM users u
        WHERE EXISTS (SELECT 1 FROM properties p WHERE p.user_id = u.id AND p.status = 'active')
        ORDER BY u.id
    `, since, since, since).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching listing stats: %w", err)
	}
	return stats, nil
}

func sendWeeklyListingStats(db *gorm.DB) {
	if email.GlobalEmailService == nil {
		return
	}

	startDate := time.Now().AddDate(0, 0, -7)
	stats, err := CollectListingStats(db, startDate)
	if err != nil {
		log.Print(err)
		return
	}

	log.Printf("Sending weekly listing stats to %d owners", len(stats))
	for _, stat := range stats {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := email.GlobalEmailService.SendListingStats(ctx, stat.Email, email.ListingStatsData{
			Name:           stat.name(),
			Period:         "الأسبوع",
			ActiveListings: stat.ActiveListings,
			TotalViews:     stat.TotalViews,
			NewLikes:       stat.NewLikes,
			NewComments:    stat.NewComments,
			NewInquiries:   stat.NewInquiries,
			TopProperty:    stat.TopProperty,
			TopViews:       stat.TopViews,
			StartDate:      startDate,
		})
		cancel()
		if err != nil {
			log.Printf("Error sending listing stats to %s: %v", stat.Email, err)
		}
	}
}
