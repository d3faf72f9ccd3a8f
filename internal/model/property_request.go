package model

import (
	"time"

	"gorm.io/datatypes"
)

type RequestStatus string

const (
	RequestStatusActive    RequestStatus = "active"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusActive, RequestStatusFulfilled, RequestStatusCancelled:
		return true
	}
	return false
}

// PropertyRequest is a standing search a user files; every bound is
// optional and inclusive.
type PropertyRequest struct {
	ID                 uint                        `json:"id" gorm:"primaryKey"`
	UserID             uint                        `json:"user_id" gorm:"not null;index"`
	Title              string                      `json:"title" gorm:"size:200;not null"`
	PropertyType       PropertyType                `json:"property_type" gorm:"size:20"`
	Category           PropertyCategory            `json:"category" gorm:"size:20"`
	MinPrice           *float64                    `json:"min_price"`
	MaxPrice           *float64                    `json:"max_price"`
	MinBedrooms        *int                        `json:"min_bedrooms"`
	MaxBedrooms        *int                        `json:"max_bedrooms"`
	MinBathrooms       *int                        `json:"min_bathrooms"`
	MinArea            *float64                    `json:"min_area"`
	MaxArea            *float64                    `json:"max_area"`
	PreferredCities    datatypes.JSONSlice[string] `json:"preferred_cities"`
	PreferredDistricts datatypes.JSONSlice[string] `json:"preferred_districts"`
	Features           datatypes.JSONSlice[string] `json:"features"`
	Description        string                      `json:"description" gorm:"type:text"`
	ContactPhone       string                      `json:"contact_phone" gorm:"size:30"`
	ContactWhatsapp    string                      `json:"contact_whatsapp" gorm:"size:30"`
	Status             RequestStatus               `json:"status" gorm:"size:20;not null;default:active;index"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	MatchCount     int64  `json:"match_count" gorm:"column:match_count;->;-:migration"`
	Username       string `json:"username,omitempty" gorm:"column:username;->;-:migration"`
	FullName       string `json:"full_name,omitempty" gorm:"column:full_name;->;-:migration"`
	ProfilePicture string `json:"profile_picture,omitempty" gorm:"column:profile_picture;->;-:migration"`
	Phone          string `json:"phone,omitempty" gorm:"column:phone;->;-:migration"`
}

func (r *PropertyRequest) Normalize() {
	if r.Status == "" {
		r.Status = RequestStatusActive
	}
	if r.PreferredCities == nil {
		r.PreferredCities = datatypes.JSONSlice[string]{}
	}
	if r.PreferredDistricts == nil {
		r.PreferredDistricts = datatypes.JSONSlice[string]{}
	}
	if r.Features == nil {
		r.Features = datatypes.JSONSlice[string]{}
	}
}
