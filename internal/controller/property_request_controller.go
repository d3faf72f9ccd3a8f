package controller

import (
	"log"
	"strconv"
	"strings"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/internal/service"
	"diyari_backend/pkg/cache"
	"diyari_backend/pkg/database"
	"diyari_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PropertyRequestInput struct {
	Title              string                 `json:"title" validate:"required,max=200"`
	PropertyType       model.PropertyType     `json:"property_type" validate:"required,oneof=sale rent commercial residential"`
	Category           model.PropertyCategory `json:"category" validate:"required,oneof=apartment house villa land office shop"`
	MinPrice           *float64               `json:"min_price" validate:"omitempty,min=0"`
	MaxPrice           *float64               `json:"max_price" validate:"omitempty,min=0"`
	MinBedrooms        *int                   `json:"min_bedrooms" validate:"omitempty,min=0"`
	MaxBedrooms        *int                   `json:"max_bedrooms" validate:"omitempty,min=0"`
	MinBathrooms       *int                   `json:"min_bathrooms" validate:"omitempty,min=0"`
	MinArea            *float64               `json:"min_area" validate:"omitempty,min=0"`
	MaxArea            *float64               `json:"max_area" validate:"omitempty,min=0"`
	PreferredCities    []string               `json:"preferred_cities"`
	PreferredDistricts []string               `json:"preferred_districts"`
	Features           []string               `json:"features"`
	Description        string                 `json:"description"`
	ContactPhone       string                 `json:"contact_phone" validate:"max=30"`
	ContactWhatsapp    string                 `json:"contact_whatsapp" validate:"max=30"`
}

// rangeErrors reports every lower bound that exceeds its upper bound. A zero
// upper bound means no limit.
func (in *PropertyRequestInput) rangeErrors() validation.FieldErrors {
	errs := validation.FieldErrors{}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MaxPrice > 0 && *in.MinPrice > *in.MaxPrice {
		errs["max_price"] = "gtefield"
	}
	if in.MinBedrooms != nil && in.MaxBedrooms != nil && *in.MaxBedrooms > 0 && *in.MinBedrooms > *in.MaxBedrooms {
		errs["max_bedrooms"] = "gtefield"
	}
	if in.MinArea != nil && in.MaxArea != nil && *in.MaxArea > 0 && *in.MinArea > *in.MaxArea {
		errs["max_area"] = "gtefield"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func cleanList(values []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// CreatePropertyRequest stores the request and runs the match pass in the
// same transaction. Owners hear about matches after the commit.
func CreatePropertyRequest(c *fiber.Ctx) error {
	input := new(PropertyRequestInput)
	if ok, err := bindJSON(c, input, "Title, property type, and category are required"); !ok {
		return err
	}
	if errs := input.rangeErrors(); errs != nil {
		return validationFailed(c, errs, "")
	}

	request := model.PropertyRequest{
		UserID:             currentUserID(c),
		Title:              strings.TrimSpace(input.Title),
		PropertyType:       input.PropertyType,
		Category:           input.Category,
		MinPrice:           input.MinPrice,
		MaxPrice:           input.MaxPrice,
		MinBedrooms:        input.MinBedrooms,
		MaxBedrooms:        input.MaxBedrooms,
		MinBathrooms:       input.MinBathrooms,
		MinArea:            input.MinArea,
		MaxArea:            input.MaxArea,
		PreferredCities:    cleanList(input.PreferredCities),
		PreferredDistricts: cleanList(input.PreferredDistricts),
		Features:           cleanList(input.Features),
		Description:        strings.TrimSpace(input.Description),
		ContactPhone:       strings.TrimSpace(input.ContactPhone),
		ContactWhatsapp:    strings.TrimSpace(input.ContactWhatsapp),
	}
	request.Normalize()

	db := database.GetDB()

	var result *service.MatchResult
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		var err error
		result, err = service.RunMatchPass(tx, &request)
		return err
	})
	if err != nil {
		log.Printf("Error creating property request: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create property request")
	}

	service.Dispatch(db, result.Notifications...)
	service.EmailMatches(db, &request, result.Properties)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Property request created successfully",
		"requestId":   request.ID,
		"match_count": len(result.Notifications),
	})
}

// matchCountColumn counts the property_match notifications pointing at a request.
const matchCountColumn = `(SELECT COUNT(*) FROM notifications
	WHERE notifications.property_request_id = property_requests.id
	AND notifications.type = 'property_match') AS match_count`

func GetMyRequests(c *fiber.Ctx) error {
	requests := []model.PropertyRequest{}
	err := database.GetDB().Model(&model.PropertyRequest{}).
		Select("property_requests.*, " + matchCountColumn).
		Where("property_requests.user_id = ?", currentUserID(c)).
		Order("property_requests.created_at DESC").Order("property_requests.id DESC").
		Find(&requests).Error
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch requests")
	}

	return c.JSON(fiber.Map{"requests": requests})
}

const activeRequestsTTL = 30 * time.Second

// GetActiveRequests is the board listing owners browse for buyers. Pages
// are the same for every caller and are cached briefly when Redis is on.
func GetActiveRequests(c *fiber.Ctx) error {
	page, limit, offset := pagination(c, 10)
	ctx := c.UserContext()

	cacheKey := cache.GenerateQueryCacheKey("requests:active", map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	})
	requests := []model.PropertyRequest{}
	if hit, err := cache.GetCached(ctx, cacheKey, &requests); err == nil && hit {
		return c.JSON(fiber.Map{"requests": requests})
	}

	err := database.GetDB().Model(&model.PropertyRequest{}).
		Select("property_requests.*, users.username, users.full_name, users.profile_picture, users.phone").
		Joins("JOIN users ON users.id = property_requests.user_id").
		Where("property_requests.status = ?", model.RequestStatusActive).
		Order("property_requests.created_at DESC").Order("property_requests.id DESC").
		Limit(limit).Offset(offset).
		Find(&requests).Error
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch requests")
	}

	if err := cache.SetCached(ctx, cacheKey, requests, activeRequestsTTL); err != nil {
		log.Printf("Error caching active requests: %v", err)
	}

	return c.JSON(fiber.Map{"requests": requests})
}

type RequestStatusInput struct {
	Status model.RequestStatus `json:"status"`
}

// UpdateRequestStatus answers 404 both for a missing request and for one
// owned by someone else.
func UpdateRequestStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Request not found or not authorized")
	}

	input := new(RequestStatusInput)
	if err := c.BodyParser(input); err != nil || !input.Status.Valid() {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid status")
	}

	result := database.GetDB().Model(&model.PropertyRequest{}).
		Where("id = ? AND user_id = ?", id, currentUserID(c)).
		Update("status", input.Status)
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update request status")
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "Request not found or not authorized")
	}

	return c.JSON(fiber.Map{"message": "Request status updated successfully"})
}

func DeletePropertyRequest(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Request not found or not authorized")
	}

	result := database.GetDB().
		Where("id = ? AND user_id = ?", id, currentUserID(c)).
		Delete(&model.PropertyRequest{})
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete request")
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "Request not found or not authorized")
	}

	return c.JSON(fiber.Map{"message": "Request deleted successfully"})
}
