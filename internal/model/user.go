package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"not null"`
	FullName       string    `json:"full_name" gorm:"size:100"`
	Bio            string    `json:"bio" gorm:"type:text"`
	ProfilePicture string    `json:"profile_picture"`
	Phone          string    `json:"phone" gorm:"size:30"`
	Location       string    `json:"location" gorm:"size:100"`
	Role           Role      `json:"role" gorm:"size:20;not null;default:user"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName is the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Username
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":              u.ID,
		"username":        u.Username,
		"full_name":       u.FullName,
		"bio":             u.Bio,
		"profile_picture": u.ProfilePicture,
		"location":        u.Location,
		"created_at":      u.CreatedAt,
	}
}

// GetPrivateProfile adds the fields only the account owner and admins see.
func (u *User) GetPrivateProfile() map[string]interface{} {
	profile := u.GetPublicProfile()
	profile["email"] = u.Email
	profile["phone"] = u.Phone
	profile["role"] = u.Role
	return profile
}

type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;uniqueIndex:idx_follow_pair"`
	FollowingID uint      `json:"following_id" gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following User `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

type PushToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Token     string    `json:"token" gorm:"size:512;uniqueIndex;not null"`
	Platform  string    `json:"platform" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
