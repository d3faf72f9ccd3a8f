package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"diyari_backend/internal/middleware"
	"diyari_backend/internal/model"
	"diyari_backend/internal/service"
	"diyari_backend/pkg/database"
	"diyari_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// addProfileCounts adds listing and follow counters to a profile map.
func addProfileCounts(db *gorm.DB, userID uint, profile map[string]interface{}) error {
	var counts struct {
		PropertiesCount int64
		FollowersCount  int64
		FollowingCount  int64
	}
	err := db.Raw(`
        SELECT
            (SELECT COUNT(*) FROM properties WHERE user_id = ? AND status = 'active') AS properties_count,
            (SELECT COUNT(*) FROM follows WHERE following_id = ?) AS followers_count,
            (SELECT COUNT(*) FROM follows WHERE follower_id = ?) AS following_count
    `, userID, userID, userID).Scan(&counts).Error
	if err != nil {
		return err
	}

	profile["properties_count"] = counts.PropertiesCount
	profile["followers_count"] = counts.FollowersCount
	profile["following_count"] = counts.FollowingCount
	return nil
}

func findUserByUsername(db *gorm.DB, username string) (*model.User, error) {
	var user model.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserProfile(c *fiber.Ctx) error {
	db := database.GetDB()

	user, err := findUserByUsername(db, c.Params("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Database error")
	}

	profile := user.GetPublicProfile()
	if err := addProfileCounts(db, user.ID, profile); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Database error")
	}

	var following int64
	if err := db.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", currentUserID(c), user.ID).
		Count(&following).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Database error")
	}
	profile["is_following"] = following > 0

	return c.JSON(fiber.Map{"user": profile})
}

type userSearchResult struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture"`
}

func SearchUsers(c *fiber.Ctx) error {
	pattern := "%" + strings.TrimSpace(c.Params("query")) + "%"

	users := []userSearchResult{}
	if err := database.GetDB().Model(&model.User{}).
		Select("id, username, full_name, profile_picture").
		Where("username LIKE ? OR full_name LIKE ?", pattern, pattern).
		Order("username").
		Limit(20).
		Scan(&users).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Search failed")
	}

	return c.JSON(fiber.Map{"users": users})
}

type ProfileUpdateInput struct {
	FullName string `json:"full_name" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Phone    string `json:"phone" validate:"max=30"`
	Bio      string `json:"bio" validate:"max=1000"`
	Location string `json:"location" validate:"max=100"`
}

// UpdateProfile takes a multipart form; only the fields sent are changed.
// An optional "profile_picture" file replaces the avatar.
func UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	db := database.GetDB()

	updates := map[string]interface{}{}
	input := ProfileUpdateInput{}
	for field, target := range map[string]*string{
		"full_name": &input.FullName,
		"email":     &input.Email,
		"phone":     &input.Phone,
		"bio":       &input.Bio,
		"location":  &input.Location,
	} {
		if value, sent := formField(c, field); sent {
			*target = strings.TrimSpace(value)
			updates[field] = *target
		}
	}
	if errs := validation.Struct(&input); errs != nil {
		return validationFailed(c, errs, "")
	}

	if email, ok := updates["email"].(string); ok {
		email = strings.ToLower(email)
		if email == "" {
			delete(updates, "email")
		} else {
			updates["email"] = email
			var taken int64
			if err := db.Model(&model.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&taken).Error; err != nil {
				return errorJSON(c, fiber.StatusInternalServerError, "Could not update profile")
			}
			if taken > 0 {
				return errorJSON(c, fiber.StatusBadRequest, "Email already in use")
			}
		}
	}

	oldPicture := user.ProfilePicture
	var newPicture string
	if fh, err := c.FormFile("profile_picture"); err == nil {
		if err := validation.ValidateImage(fh, uploads.MaxImageSize); err != nil {
			return respondUpload(c, mediaError(err))
		}
		url, err := saveImage(c.UserContext(), user.Username, "avatars", fh)
		if err != nil {
			log.Printf("Error saving avatar for user %d: %v", user.ID, err)
			return respondUpload(c, err)
		}
		newPicture = url
		updates["profile_picture"] = url
	}

	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			if newPicture != "" {
				removeMedia(c.UserContext(), []string{newPicture})
			}
			return errorJSON(c, fiber.StatusInternalServerError, "Could not update profile")
		}
	}
	if newPicture != "" && oldPicture != "" {
		removeMedia(c.UserContext(), []string{oldPicture})
	}

	var updated model.User
	if err := db.First(&updated, user.ID).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not fetch user")
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    updated.GetPrivateProfile(),
	})
}

// formField reports whether key was sent as a form or multipart value.
func formField(c *fiber.Ctx, key string) (string, bool) {
	if form, err := c.MultipartForm(); err == nil {
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}
	args := c.Request().PostArgs()
	if !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}

// ToggleFollow follows the user, or unfollows when already following.
func ToggleFollow(c *fiber.Ctx) error {
	follower := middleware.CurrentUser(c)
	db := database.GetDB()

	target, err := findUserByUsername(db, c.Params("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Database error")
	}
	if target.ID == follower.ID {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot follow yourself")
	}

	var (
		following    bool
		notification *model.Notification
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND following_id = ?", follower.ID, target.ID).Delete(&model.Follow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		if err := tx.Create(&model.Follow{FollowerID: follower.ID, FollowingID: target.ID}).Error; err != nil {
			return err
		}
		following = true

		notification = model.NewNotification(
			target.ID,
			"متابع جديد",
			fmt.Sprintf("%s بدأ بمتابعتك", follower.DisplayName()),
			model.NewFollower{FollowerID: follower.ID},
		)
		return tx.Create(notification).Error
	})
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update follow")
	}

	service.Dispatch(db, notification)

	return c.JSON(fiber.Map{"following": following})
}

type PushTokenInput struct {
	Token    string `json:"token" validate:"required,max=512"`
	Platform string `json:"platform" validate:"omitempty,oneof=android ios web"`
}

// RegisterPushToken binds a device token to the caller. A token that
// belonged to another account moves over.
func RegisterPushToken(c *fiber.Ctx) error {
	input := new(PushTokenInput)
	if ok, err := bindJSON(c, input, "Token is required"); !ok {
		return err
	}
	userID := currentUserID(c)

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", input.Token).Delete(&model.PushToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.PushToken{
			UserID:   userID,
			Token:    input.Token,
			Platform: input.Platform,
		}).Error
	})
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not register push token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Push token registered"})
}

func DeletePushToken(c *fiber.Ctx) error {
	input := new(PushTokenInput)
	if err := c.BodyParser(input); err != nil || strings.TrimSpace(input.Token) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Token is required")
	}

	result := database.GetDB().
		Where("user_id = ? AND token = ?", currentUserID(c), input.Token).
		Delete(&model.PushToken{})
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not remove push token")
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "Push token not found")
	}

	return c.JSON(fiber.Map{"message": "Push token removed"})
}
