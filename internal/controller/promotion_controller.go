package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"diyari_backend/internal/middleware"
	"diyari_backend/internal/model"
	"diyari_backend/internal/service"
	"diyari_backend/pkg/database"
	"diyari_backend/pkg/email"
	"diyari_backend/pkg/promotion"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
)

type PromoteInput struct {
	Plan string `json:"plan" validate:"required"`
}

func ListPromotionPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": promotion.List()})
}

// PromoteProperty opens a Stripe Checkout session for a featured-listing
// plan. The listing is featured once the webhook confirms payment.
func PromoteProperty(c *fiber.Ctx) error {
	property := c.Locals("property").(*model.Property)
	user := middleware.CurrentUser(c)

	input := new(PromoteInput)
	if ok, err := bindJSON(c, input, "Plan is required"); !ok {
		return err
	}
	plan, ok := promotion.GetPlan(input.Plan)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid plan")
	}
	if payments.SecretKey == "" {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Payments are not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(payments.SuccessURL),
		CancelURL:         stripe.String(payments.CancelURL),
		CustomerEmail:     stripe.String(user.Email),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(property.ID), 10)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(plan.Currency),
					UnitAmount: stripe.Int64(plan.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name + " - " + property.Title),
					},
				},
			},
		},
	}
	params.AddMetadata("property_id", strconv.FormatUint(uint64(property.ID), 10))
	params.AddMetadata("user_id", strconv.FormatUint(uint64(user.ID), 10))
	params.AddMetadata("plan", string(plan.Type))

	checkout, err := session.New(params)
	if err != nil {
		log.Printf("Error creating checkout session for property %d: %v", property.ID, err)
		return errorJSON(c, fiber.StatusBadGateway, "Could not create checkout session")
	}

	promo := model.Promotion{
		UserID:          user.ID,
		PropertyID:      property.ID,
		Plan:            string(plan.Type),
		Days:            plan.Days,
		AmountCents:     plan.PriceCents,
		Currency:        plan.Currency,
		StripeSessionID: checkout.ID,
		Status:          model.PromotionPending,
	}
	if err := database.GetDB().Create(&promo).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not save promotion")
	}

	return c.JSON(fiber.Map{
		"url":        checkout.URL,
		"session_id": checkout.ID,
	})
}

func StripeWebhook(c *fiber.Ctx) error {
	if payments.WebhookSecret == "" {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Payments are not configured")
	}

	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), payments.WebhookSecret)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid webhook signature")
	}

	log.Printf("Processing Stripe webhook event: %s", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		var data struct {
			ID            string `json:"id"`
			PaymentStatus string `json:"payment_status"`
		}
		if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}
		if data.PaymentStatus != "" && data.PaymentStatus != "paid" {
			break
		}
		return completePromotion(c, data.ID)
	}

	return c.SendStatus(fiber.StatusOK)
}

func completePromotion(c *fiber.Ctx, sessionID string) error {
	db := database.GetDB()

	promo, applied, err := service.ApplyPaidPromotion(db, sessionID, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrPromotionNotFound) {
			log.Printf("Stripe session %s has no promotion", sessionID)
			return c.SendStatus(fiber.StatusOK)
		}
		log.Printf("Error applying promotion for session %s: %v", sessionID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "Could not apply promotion")
	}
	if !applied {
		return c.SendStatus(fiber.StatusOK)
	}

	var featuredUntil time.Time
	if promo.Property.FeaturedUntil != nil {
		featuredUntil = *promo.Property.FeaturedUntil
		log.Printf("Property %d featured until %s", promo.PropertyID, featuredUntil.Format(time.RFC3339))
	} else {
		log.Printf("Property %d stays featured without an end date", promo.PropertyID)
	}

	if email.GlobalEmailService != nil {
		var owner model.User
		if err := db.First(&owner, promo.UserID).Error; err == nil {
			plan, _ := promotion.GetPlan(promo.Plan)
			data := email.PromotionReceiptData{
				Name:          owner.DisplayName(),
				PropertyTitle: promo.Property.Title,
				PlanName:      plan.Name,
				Days:          promo.Days,
				FeaturedUntil: featuredUntil,
			}
			go func(to string) {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				if err := email.GlobalEmailService.SendPromotionReceipt(ctx, to, data); err != nil {
					log.Printf("Error sending promotion receipt to %s: %v", to, err)
				}
			}(owner.Email)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
