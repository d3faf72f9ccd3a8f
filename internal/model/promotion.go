package model

import "time"

type PromotionStatus string

const (
	PromotionPending PromotionStatus = "pending"
	PromotionPaid    PromotionStatus = "paid"
)

// Promotion is one featured-listing purchase made through Stripe Checkout.
type Promotion struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	PropertyID      uint            `json:"property_id" gorm:"not null;index"`
	Plan            string          `json:"plan" gorm:"size:20;not null"`
	Days            int             `json:"days" gorm:"not null"`
	AmountCents     int64           `json:"amount_cents" gorm:"not null"`
	Currency        string          `json:"currency" gorm:"size:10;not null"`
	StripeSessionID string          `json:"stripe_session_id" gorm:"size:255;uniqueIndex;not null"`
	Status          PromotionStatus `json:"status" gorm:"size:20;not null;default:pending"`
	PaidAt          *time.Time      `json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	User     User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Property Property `json:"-" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}
