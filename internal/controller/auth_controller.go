package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"diyari_backend/internal/middleware"
	"diyari_backend/internal/model"
	"diyari_backend/pkg/database"
	"diyari_backend/pkg/email"
	"diyari_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	FullName      string `json:"full_name" validate:"max=100"`
	FullNameCamel string `json:"fullName" validate:"max=100"`
	Username      string `json:"username" validate:"required,min=3,max=50"`
	Email         string `json:"email" validate:"required,email,max=100"`
	Phone         string `json:"phone" validate:"max=30"`
	Password      string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if ok, err := bindJSON(c, input, "All fields are required"); !ok {
		return err
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		fullName = strings.TrimSpace(input.FullNameCamel)
	}

	db := database.GetDB()

	var existing int64
	if err := db.Model(&model.User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&existing).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not create user")
	}
	if existing > 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Username or email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not hash password")
	}

	user := model.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashedPassword),
		FullName: fullName,
		Phone:    strings.TrimSpace(input.Phone),
		Role:     model.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorJSON(c, fiber.StatusBadRequest, "Username or email already exists")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Could not create user")
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not generate token")
	}

	if email.GlobalEmailService != nil {
		go func(to, name string) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := email.GlobalEmailService.SendWelcomeEmail(ctx, to, name); err != nil {
				log.Printf("Error sending welcome email to %s: %v", to, err)
			}
		}(user.Email, user.DisplayName())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    user.GetPrivateProfile(),
	})
}

// Login accepts either the username or the email as identifier.
func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if ok, err := bindJSON(c, input, "Username and password are required"); !ok {
		return err
	}

	identifier := strings.TrimSpace(input.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(input.Email)
	}
	if identifier == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Username and password are required")
	}

	db := database.GetDB()

	var user model.User
	if err := db.Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error; err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not generate token")
	}

	history := model.LoginHistory{
		UserID: user.ID,
		IP:     c.IP(),
		Device: preview(c.Get(fiber.HeaderUserAgent), 255),
	}
	if err := db.Create(&history).Error; err != nil {
		log.Printf("Error recording login for user %d: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user.GetPrivateProfile(),
	})
}

func GetMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	profile := user.GetPrivateProfile()
	if err := addProfileCounts(database.GetDB(), user.ID, profile); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Could not fetch user")
	}

	return c.JSON(fiber.Map{"user": profile})
}
