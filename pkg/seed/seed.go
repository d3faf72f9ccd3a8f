package seed

import (
	"fmt"
	"log"

	"diyari_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin makes sure an admin account exists. An existing user with the
// same username is promoted instead of recreated.
func SeedAdmin(db *gorm.DB, username, email, password string) (*model.User, error) {
	user, err := ensureUser(db, model.User{
		Username: username,
		Email:    email,
		FullName: "Administrator",
		Role:     model.RoleAdmin,
	}, password)
	if err != nil {
		return nil, err
	}

	if user.Role != model.RoleAdmin {
		if err := db.Model(user).Update("role", model.RoleAdmin).Error; err != nil {
			return nil, fmt.Errorf("error promoting %s to admin: %w", username, err)
		}
		user.Role = model.RoleAdmin
	}

	log.Printf("Admin account %q ready", username)
	return user, nil
}

func SeedDemoUser(db *gorm.DB) (*model.User, error) {
	user, err := ensureUser(db, model.User{
		Username: "testuser",
		Email:    "testuser@diyari.local",
		FullName: "Test User",
		Phone:    "07700000000",
		Location: "بغداد",
		Role:     model.RoleUser,
	}, "123456")
	if err != nil {
		return nil, err
	}

	log.Println("Demo user seeded successfully!")
	return user, nil
}

func ensureUser(db *gorm.DB, attrs model.User, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	attrs.Password = string(hash)

	var user model.User
	result := db.Where(model.User{Username: attrs.Username}).Attrs(attrs).FirstOrCreate(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("error creating user %s: %w", attrs.Username, result.Error)
	}
	return &user, nil
}
