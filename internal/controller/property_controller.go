package controller

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"diyari_backend/internal/middleware"
	"diyari_backend/internal/model"
	"diyari_backend/internal/service"
	"diyari_backend/pkg/database"
	"diyari_backend/pkg/utils/jwt"
	"diyari_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const listingColumns = `properties.*, users.username, users.full_name, users.profile_picture,
	(SELECT COUNT(*) FROM likes WHERE likes.property_id = properties.id) AS like_count,
	(SELECT COUNT(*) FROM comments WHERE comments.property_id = properties.id) AS comment_count,
	EXISTS(SELECT 1 FROM likes WHERE likes.property_id = properties.id AND likes.user_id = ?) AS is_liked`

// listingQuery selects properties with owner info, counters and whether
// viewerID liked them.
func listingQuery(db *gorm.DB, viewerID uint, extraColumns ...string) *gorm.DB {
	columns := listingColumns
	if len(extraColumns) > 0 {
		columns += ", " + strings.Join(extraColumns, ", ")
	}
	return db.Model(&model.Property{}).
		Select(columns, viewerID).
		Joins("JOIN users ON users.id = properties.user_id")
}

func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("properties.created_at DESC").Order("properties.id DESC")
}

type PropertyInput struct {
	Title        string                 `json:"title" validate:"required,max=200"`
	Description  string                 `json:"description"`
	Price        float64                `json:"price" validate:"required,gt=0"`
	Currency     string                 `json:"currency" validate:"max=10"`
	PropertyType model.PropertyType     `json:"property_type" validate:"required,oneof=sale rent commercial residential"`
	Category     model.PropertyCategory `json:"category" validate:"required,oneof=apartment house villa land office shop"`
	Bedrooms     int                    `json:"bedrooms" validate:"min=0"`
	Bathrooms    int                    `json:"bathrooms" validate:"min=0"`
	Area         float64                `json:"area" validate:"min=0"`
	AreaUnit     string                 `json:"area_unit" validate:"max=10"`
	Location     string                 `json:"location" validate:"required,max=255"`
	City         string                 `json:"city" validate:"required,max=100"`
	District     string                 `json:"district" validate:"max=100"`
	Latitude     *float64               `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64               `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Features     []string               `json:"features"`
}

// formNumbers parses numeric form values and records the ones that are not
// numbers. Empty values are treated as absent.
type formNumbers struct {
	c    *fiber.Ctx
	errs validation.FieldErrors
}

func (f *formNumbers) float(key string) *float64 {
	raw := strings.TrimSpace(f.c.FormValue(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.errs[key] = "number"
		return nil
	}
	return &v
}

func (f *formNumbers) int(key string) int {
	raw := strings.TrimSpace(f.c.FormValue(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		f.errs[key] = "number"
		return 0
	}
	return v
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func parsePropertyForm(c *fiber.Ctx) (*PropertyInput, validation.FieldErrors) {
	nums := &formNumbers{c: c, errs: validation.FieldErrors{}}
	input := &PropertyInput{
		Title:        strings.TrimSpace(c.FormValue("title")),
		Description:  strings.TrimSpace(c.FormValue("description")),
		Price:        valueOr(nums.float("price")),
		Currency:     strings.TrimSpace(c.FormValue("currency")),
		PropertyType: model.PropertyType(c.FormValue("property_type")),
		Category:     model.PropertyCategory(c.FormValue("category")),
		Bedrooms:     nums.int("bedrooms"),
		Bathrooms:    nums.int("bathrooms"),
		Area:         valueOr(nums.float("area")),
		AreaUnit:     strings.TrimSpace(c.FormValue("area_unit")),
		Location:     strings.TrimSpace(c.FormValue("location")),
		City:         strings.TrimSpace(c.FormValue("city")),
		District:     strings.TrimSpace(c.FormValue("district")),
		Latitude:     nums.float("latitude"),
		Longitude:    nums.float("longitude"),
		Features:     splitList(c.FormValue("features")),
	}

	errs := validation.Struct(input)
	for k, v := range nums.errs {
		if errs == nil {
			errs = validation.FieldErrors{}
		}
		errs[k] = v
	}
	return input, errs
}

// GetFeed lists active listings, featured first.
func GetFeed(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page, limit, offset := pagination(c, 10)

	q := listingQuery(database.GetDB(), userID).
		Where("properties.status = ?", model.PropertyStatusActive)

	if v := c.Query("type"); v != "" {
		q = q.Where("properties.property_type = ?", v)
	}
	if v := c.Query("category"); v != "" {
		q = q.Where("properties.category = ?", v)
	}
	if v := strings.TrimSpace(c.Query("city")); v != "" {
		q = q.Where("properties.city LIKE ?", "%"+v+"%")
	}
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		q = q.Where("properties.price >= ?", v)
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		q = q.Where("properties.price <= ?", v)
	}

	properties := []model.Property{}
	if err := newestFirst(q.Order("properties.is_featured DESC")).
		Limit(limit).Offset(offset).
		Find(&properties).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch properties")
	}

	return c.JSON(fiber.Map{
		"properties": properties,
		"page":       page,
		"limit":      limit,
	})
}

// GetReels lists active listings that carry a video.
func GetReels(c *fiber.Ctx) error {
	_, limit, offset := pagination(c, 20)

	properties := []model.Property{}
	err := newestFirst(listingQuery(database.GetDB(), currentUserID(c)).
		Where("properties.status = ?", model.PropertyStatusActive).
		Where("properties.video_url IS NOT NULL AND properties.video_url <> ''")).
		Limit(limit).Offset(offset).
		Find(&properties).Error
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch reels")
	}

	return c.JSON(fiber.Map{"properties": properties})
}

func ListMyProperties(c *fiber.Ctx) error {
	userID := currentUserID(c)

	properties := []model.Property{}
	err := newestFirst(listingQuery(database.GetDB(), userID).
		Where("properties.user_id = ?", userID)).
		Find(&properties).Error
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not fetch properties")
	}

	return c.JSON(fiber.Map{"properties": properties})
}

func ListUserProperties(c *fiber.Ctx) error {
	db := database.GetDB()

	var owner model.User
	if err := db.Where("username = ?", c.Params("username")).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Could not fetch user")
	}

	properties := []model.Property{}
	err := newestFirst(listingQuery(db, currentUserID(c)).
		Where("properties.user_id = ? AND properties.status = ?", owner.ID, model.PropertyStatusActive)).
		Find(&properties).Error
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not fetch properties")
	}

	return c.JSON(fiber.Map{"properties": properties})
}

// GetProperty counts a view and returns the listing in one transaction.
// Inactive listings are only visible to their owner and admins.
func GetProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	viewer := middleware.CurrentUser(c)

	var property model.Property
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.Property{}).Where("id = ?", id)
		if !viewer.IsAdmin() {
			q = q.Where("(status = ? OR user_id = ?)", model.PropertyStatusActive, viewer.ID)
		}
		result := q.UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return listingQuery(tx, viewer.ID, "users.phone").
			Where("properties.id = ?", id).
			Take(&property).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Property not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(fiber.Map{"property": property})
}

// CreateProperty takes a multipart form with up to MaxImages "images" parts
// and one "video" part.
func CreateProperty(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input, errs := parsePropertyForm(c)
	if errs != nil {
		return validationFailed(c, errs, "Required fields missing")
	}

	images, videos, err := listingMedia(c)
	if err != nil {
		return respondUpload(c, err)
	}

	imageURLs, videoURL, err := saveListingMedia(c.UserContext(), claims.Username, images, videos)
	if err != nil {
		log.Printf("Error saving media for user %d: %v", claims.UserID, err)
		return respondUpload(c, err)
	}

	property := model.Property{
		UserID:       claims.UserID,
		Title:        input.Title,
		Description:  input.Description,
		Price:        input.Price,
		Currency:     input.Currency,
		PropertyType: input.PropertyType,
		Category:     input.Category,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		Area:         input.Area,
		AreaUnit:     input.AreaUnit,
		Location:     input.Location,
		City:         input.City,
		District:     input.District,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Features:     datatypes.JSONSlice[string](input.Features),
		ImageURLs:    datatypes.JSONSlice[string](imageURLs),
		VideoURL:     videoURL,
	}
	property.Normalize()

	db := database.GetDB()
	if err := db.Create(&property).Error; err != nil {
		removeMedia(c.UserContext(), property.MediaURLs())
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create property")
	}

	var created model.Property
	if err := listingQuery(db, claims.UserID).Where("properties.id = ?", property.ID).Take(&created).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch created property")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Property created successfully",
		"property": created,
	})
}

type PropertyStatusInput struct {
	Status model.PropertyStatus `json:"status" validate:"required,oneof=active sold rented inactive"`
}

// UpdatePropertyStatus runs behind CheckPropertyOwnership.
func UpdatePropertyStatus(c *fiber.Ctx) error {
	property := c.Locals("property").(*model.Property)

	input := new(PropertyStatusInput)
	if err := c.BodyParser(input); err != nil || validation.Struct(input) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid status")
	}

	if err := database.GetDB().Model(property).Update("status", input.Status).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not update property status")
	}

	return c.JSON(fiber.Map{
		"message": "Property status updated successfully",
		"status":  input.Status,
	})
}

// DeleteProperty runs behind CheckPropertyOwnership. Likes, comments and
// notifications go with the row through ON DELETE CASCADE.
func DeleteProperty(c *fiber.Ctx) error {
	property := c.Locals("property").(*model.Property)

	if err := deletePropertyRecord(database.GetDB(), property); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not delete property")
	}
	removeMedia(c.UserContext(), property.MediaURLs())

	return c.JSON(fiber.Map{"message": "Property deleted successfully"})
}

func deletePropertyRecord(db *gorm.DB, property *model.Property) error {
	return db.Delete(&model.Property{}, property.ID).Error
}

func findProperty(db *gorm.DB, id uint) (*model.Property, error) {
	var property model.Property
	if err := db.First(&property, id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

// ToggleLike likes the listing, or unlikes it when the caller already did.
func ToggleLike(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	user := middleware.CurrentUser(c)

	var (
		liked        bool
		likeCount    int64
		notification *model.Notification
	)
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		property, err := findProperty(tx, id)
		if err != nil {
			return err
		}

		result := tx.Where("user_id = ? AND property_id = ?", user.ID, id).Delete(&model.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.Create(&model.Like{UserID: user.ID, PropertyID: id}).Error; err != nil {
				return err
			}
			liked = true

			if property.UserID != user.ID {
				notification = model.NewNotification(
					property.UserID,
					"إعجاب جديد",
					fmt.Sprintf("%s أعجب بعقارك: %s", user.DisplayName(), property.Title),
					model.PropertyLiked{PropertyID: property.ID, ActorID: user.ID},
				)
				if err := tx.Create(notification).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&model.Like{}).Where("property_id = ?", id).Count(&likeCount).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Property not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update like")
	}

	service.Dispatch(database.GetDB(), notification)

	message := "Property unliked"
	if liked {
		message = "Property liked"
	}
	return c.JSON(fiber.Map{
		"message":    message,
		"liked":      liked,
		"like_count": likeCount,
	})
}

func commentQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&model.Comment{}).
		Select("comments.*, users.username, users.full_name, users.profile_picture").
		Joins("JOIN users ON users.id = comments.user_id")
}

// GetComments lists a listing's comments oldest first.
func GetComments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid property ID")
	}

	db := database.GetDB()
	if _, err := findProperty(db, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Property not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch comments")
	}

	var comments []model.Comment
	if err := commentQuery(db).
		Where("comments.property_id = ?", id).
		Order("comments.created_at ASC").Order("comments.id ASC").
		Find(&comments).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch comments")
	}

	return c.JSON(fiber.Map{"comments": comments})
}

type CommentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func AddComment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	user := middleware.CurrentUser(c)

	input := new(CommentInput)
	if err := c.BodyParser(input); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid input")
	}
	input.Content = strings.TrimSpace(input.Content)
	if errs := validation.Struct(input); errs != nil {
		return validationFailed(c, errs, "Comment content is required")
	}

	db := database.GetDB()

	var (
		comment      model.Comment
		notification *model.Notification
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		property, err := findProperty(tx, id)
		if err != nil {
			return err
		}

		comment = model.Comment{UserID: user.ID, PropertyID: id, Content: input.Content}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		if property.UserID != user.ID {
			notification = model.NewNotification(
				property.UserID,
				"تعليق جديد",
				fmt.Sprintf("%s علّق على عقارك: %s", user.DisplayName(), property.Title),
				model.PropertyCommented{PropertyID: property.ID, CommentID: comment.ID, ActorID: user.ID},
			)
			return tx.Create(notification).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Property not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to add comment")
	}

	service.Dispatch(db, notification)

	var created model.Comment
	if err := commentQuery(db).Where("comments.id = ?", comment.ID).Take(&created).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch created comment")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment added successfully",
		"comment": created,
	})
}
