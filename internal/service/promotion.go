package service

import (
	"errors"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/pkg/promotion"

	"gorm.io/gorm"
)

var ErrPromotionNotFound = errors.New("promotion not found")

// ApplyPaidPromotion marks the checkout session's promotion paid and
// extends the listing's featured window. applied is false when the session
// was already processed, so replayed webhooks change nothing.
func ApplyPaidPromotion(db *gorm.DB, sessionID string, now time.Time) (promo *model.Promotion, applied bool, err error) {
	promo = &model.Promotion{}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stripe_session_id = ?", sessionID).First(promo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPromotionNotFound
			}
			return err
		}

		result := tx.Model(&model.Promotion{}).
			Where("id = ? AND status = ?", promo.ID, model.PromotionPending).
			Updates(map[string]interface{}{"status": model.PromotionPaid, "paid_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.First(&promo.Property, promo.PropertyID).Error; err != nil {
			return err
		}
		promo.Status = model.PromotionPaid
		promo.PaidAt = &now
		applied = true

		// An open-ended feature stays open-ended.
		if promo.Property.IsFeatured && promo.Property.FeaturedUntil == nil {
			return nil
		}

		until := promotion.ExtendFeatured(promo.Property.FeaturedUntil, now, promo.Days)
		if err := tx.Model(&promo.Property).Updates(map[string]interface{}{
			"is_featured":    true,
			"featured_until": until,
		}).Error; err != nil {
			return err
		}
		promo.Property.IsFeatured = true
		promo.Property.FeaturedUntil = &until
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return promo, applied, nil
}
