package model

import (
	"time"

	"gorm.io/datatypes"
)

type PropertyType string

const (
	PropertyTypeSale        PropertyType = "sale"
	PropertyTypeRent        PropertyType = "rent"
	PropertyTypeCommercial  PropertyType = "commercial"
	PropertyTypeResidential PropertyType = "residential"
)

type PropertyCategory string

const (
	CategoryApartment PropertyCategory = "apartment"
	CategoryHouse     PropertyCategory = "house"
	CategoryVilla     PropertyCategory = "villa"
	CategoryLand      PropertyCategory = "land"
	CategoryOffice    PropertyCategory = "office"
	CategoryShop      PropertyCategory = "shop"
)

type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusSold     PropertyStatus = "sold"
	PropertyStatusRented   PropertyStatus = "rented"
	PropertyStatusInactive PropertyStatus = "inactive"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusActive, PropertyStatusSold, PropertyStatusRented, PropertyStatusInactive:
		return true
	}
	return false
}

const (
	DefaultCurrency = "IQD"
	DefaultAreaUnit = "sqm"
)

type Property struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	UserID        uint                        `json:"user_id" gorm:"not null;index"`
	Title         string                      `json:"title" gorm:"size:200;not null"`
	Description   string                      `json:"description" gorm:"type:text"`
	Price         float64                     `json:"price" gorm:"not null;index"`
	Currency      string                      `json:"currency" gorm:"size:10;not null;default:IQD"`
	PropertyType  PropertyType                `json:"property_type" gorm:"size:20;not null;index"`
	Category      PropertyCategory            `json:"category" gorm:"size:20;not null;index"`
	Bedrooms      int                         `json:"bedrooms" gorm:"not null;default:0"`
	Bathrooms     int                         `json:"bathrooms" gorm:"not null;default:0"`
	Area          float64                     `json:"area" gorm:"not null;default:0"`
	AreaUnit      string                      `json:"area_unit" gorm:"size:10;not null;default:sqm"`
	Location      string                      `json:"location" gorm:"size:255;not null"`
	City          string                      `json:"city" gorm:"size:100;not null;index"`
	District      string                      `json:"district" gorm:"size:100"`
	Latitude      *float64                    `json:"latitude"`
	Longitude     *float64                    `json:"longitude"`
	Features      datatypes.JSONSlice[string] `json:"features" gorm:"column:features"`
	ImageURLs     datatypes.JSONSlice[string] `json:"image_urls" gorm:"column:image_urls"`
	VideoURL      string                      `json:"video_url" gorm:"column:video_url"`
	IsFeatured    bool                        `json:"is_featured" gorm:"not null;default:false;index"`
	FeaturedUntil *time.Time                  `json:"featured_until"`
	Status        PropertyStatus              `json:"status" gorm:"size:20;not null;default:active;index"`
	ViewsCount    int64                       `json:"views_count" gorm:"not null;default:0"`
	CreatedAt     time.Time                   `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time                   `json:"updated_at"`

	Owner User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	// Filled by the listing queries, never written.
	Username       string `json:"username,omitempty" gorm:"column:username;->;-:migration"`
	FullName       string `json:"full_name,omitempty" gorm:"column:full_name;->;-:migration"`
	ProfilePicture string `json:"profile_picture,omitempty" gorm:"column:profile_picture;->;-:migration"`
	Phone          string `json:"phone,omitempty" gorm:"column:phone;->;-:migration"`
	LikeCount      int64  `json:"like_count" gorm:"column:like_count;->;-:migration"`
	CommentCount   int64  `json:"comment_count" gorm:"column:comment_count;->;-:migration"`
	IsLiked        bool   `json:"is_liked" gorm:"column:is_liked;->;-:migration"`
}

// Normalize fills the defaults the API promises so list columns are stored
// as JSON arrays and never as null.
func (p *Property) Normalize() {
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.AreaUnit == "" {
		p.AreaUnit = DefaultAreaUnit
	}
	if p.Status == "" {
		p.Status = PropertyStatusActive
	}
	if p.Features == nil {
		p.Features = datatypes.JSONSlice[string]{}
	}
	if p.ImageURLs == nil {
		p.ImageURLs = datatypes.JSONSlice[string]{}
	}
}

// MediaURLs lists every stored media path of the listing.
func (p *Property) MediaURLs() []string {
	urls := append([]string{}, p.ImageURLs...)
	if p.VideoURL != "" {
		urls = append(urls, p.VideoURL)
	}
	return urls
}

type Like struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_user_property"`
	PropertyID uint      `json:"property_id" gorm:"not null;uniqueIndex:idx_like_user_property;index"`
	CreatedAt  time.Time `json:"created_at"`

	User     User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Property Property `json:"-" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	PropertyID uint      `json:"property_id" gorm:"not null;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User     User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Property Property `json:"-" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`

	Username       string `json:"username" gorm:"column:username;->;-:migration"`
	FullName       string `json:"full_name" gorm:"column:full_name;->;-:migration"`
	ProfilePicture string `json:"profile_picture" gorm:"column:profile_picture;->;-:migration"`
}
