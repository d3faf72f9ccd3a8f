package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/pkg/cache"
	"diyari_backend/pkg/database"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

type DashboardStats struct {
	Users      int64 `json:"users"`
	Properties int64 `json:"properties"`
	Messages   int64 `json:"messages"`
	Requests   int64 `json:"requests"`
}

// CollectDashboardStats runs the counts concurrently. A count that fails is
// logged and reported as zero.
func CollectDashboardStats(ctx context.Context, db *gorm.DB) DashboardStats {
	var stats DashboardStats

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&model.User{}, &stats.Users},
		{&model.Property{}, &stats.Properties},
		{&model.Message{}, &stats.Messages},
		{&model.PropertyRequest{}, &stats.Requests},
	}

	// A failed count reports 0 and does not cancel the others.
	var g errgroup.Group
	for _, count := range counts {
		g.Go(func() error {
			if err := db.WithContext(ctx).Model(count.model).Count(count.dest).Error; err != nil {
				*count.dest = 0
				return fmt.Errorf("error counting %T: %w", count.model, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("Error collecting dashboard stats: %v", err)
	}

	return stats
}

func GetAdminStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var stats DashboardStats
	if hit, err := cache.GetCached(ctx, statsCacheKey, &stats); err == nil && hit {
		return c.JSON(stats)
	}

	stats = CollectDashboardStats(ctx, database.GetDB())
	if err := cache.SetCached(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
		log.Printf("Error caching admin stats: %v", err)
	}

	return c.JSON(stats)
}

func ListUsers(c *fiber.Ctx) error {
	page, limit, offset := pagination(c, 50)
	db := database.GetDB()

	var total int64
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch users")
	}

	var users []model.User
	if err := db.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch users")
	}

	profiles := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].GetPrivateProfile())
	}

	return c.JSON(fiber.Map{
		"users": profiles,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

// ListAllProperties includes listings of every status.
func ListAllProperties(c *fiber.Ctx) error {
	page, limit, offset := pagination(c, 50)

	properties := []model.Property{}
	if err := newestFirst(listingQuery(database.GetDB(), currentUserID(c))).
		Limit(limit).Offset(offset).
		Scan(&properties).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch properties")
	}

	return c.JSON(fiber.Map{
		"properties": properties,
		"page":       page,
		"limit":      limit,
	})
}

// DeleteUser removes the account; the database cascades everything it owns.
func DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	if id == currentUserID(c) {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot delete your own admin account")
	}

	db := database.GetDB()

	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete user")
	}

	var properties []model.Property
	if err := db.Where("user_id = ?", id).Find(&properties).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete user")
	}

	result := db.Delete(&model.User{}, id)
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete user")
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}

	media := []string{}
	if user.ProfilePicture != "" {
		media = append(media, user.ProfilePicture)
	}
	for i := range properties {
		media = append(media, properties[i].MediaURLs()...)
	}
	removeMedia(c.UserContext(), media)
	cache.Invalidate(c.UserContext(), statsCacheKey)

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func AdminDeleteProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	db := database.GetDB()

	property, err := findProperty(db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Property not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete property")
	}

	if err := deletePropertyRecord(db, property); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete property")
	}
	removeMedia(c.UserContext(), property.MediaURLs())
	cache.Invalidate(c.UserContext(), statsCacheKey)

	return c.JSON(fiber.Map{"message": "Property deleted successfully"})
}

type FeaturedInput struct {
	IsFeatured *bool `json:"is_featured" validate:"required"`
	Days       int   `json:"days" validate:"min=0,max=365"`
}

// SetFeatured toggles the featured flag. Without days a featured listing
// stays featured until an admin clears it.
func SetFeatured(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	input := new(FeaturedInput)
	if ok, err := bindJSON(c, input, "is_featured is required"); !ok {
		return err
	}

	db := database.GetDB()
	property, err := findProperty(db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Property not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update property")
	}

	var until *time.Time
	if *input.IsFeatured && input.Days > 0 {
		t := time.Now().AddDate(0, 0, input.Days)
		until = &t
	}
	if err := db.Model(property).Updates(map[string]interface{}{
		"is_featured":    *input.IsFeatured,
		"featured_until": until,
	}).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update property")
	}
	property.IsFeatured = *input.IsFeatured
	property.FeaturedUntil = until

	return c.JSON(fiber.Map{
		"message":  "Property updated successfully",
		"property": property,
	})
}

type RoleInput struct {
	Role model.Role `json:"role" validate:"required"`
}

func SetUserRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	input := new(RoleInput)
	if ok, err := bindJSON(c, input, "Role is required"); !ok {
		return err
	}
	if !input.Role.Valid() {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid role")
	}
	if id == currentUserID(c) && input.Role != model.RoleAdmin {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot change your own role")
	}

	result := database.GetDB().Model(&model.User{}).Where("id = ?", id).Update("role", input.Role)
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update user")
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}

	return c.JSON(fiber.Map{"message": "User role updated successfully", "role": input.Role})
}
