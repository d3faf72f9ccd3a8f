package model

import (
	"time"

	"gorm.io/datatypes"
)

type MessageType string

const (
	MessageTypeText            MessageType = "text"
	MessageTypePropertyInquiry MessageType = "property_inquiry"
)

func (t MessageType) Valid() bool {
	return t == MessageTypeText || t == MessageTypePropertyInquiry
}

type Message struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	SenderID    uint        `json:"sender_id" gorm:"not null;index"`
	ReceiverID  uint        `json:"receiver_id" gorm:"not null;index"`
	PropertyID  *uint       `json:"property_id" gorm:"index"`
	Content     string      `json:"content" gorm:"type:text;not null"`
	MessageType MessageType `json:"message_type" gorm:"size:20;not null;default:text"`
	IsRead      bool        `json:"is_read" gorm:"not null;default:false"`
	CreatedAt   time.Time   `json:"created_at" gorm:"index"`

	Sender   User      `json:"-" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Receiver User      `json:"-" gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
	Property *Property `json:"-" gorm:"foreignKey:PropertyID;constraint:OnDelete:SET NULL"`

	SenderUsername string                      `json:"sender_username,omitempty" gorm:"column:sender_username;->;-:migration"`
	SenderName     string                      `json:"sender_name,omitempty" gorm:"column:sender_name;->;-:migration"`
	SenderPicture  string                      `json:"sender_picture,omitempty" gorm:"column:sender_picture;->;-:migration"`
	PropertyTitle  *string                     `json:"property_title,omitempty" gorm:"column:property_title;->;-:migration"`
	PropertyPrice  *float64                    `json:"property_price,omitempty" gorm:"column:property_price;->;-:migration"`
	PropertyImages datatypes.JSONSlice[string] `json:"property_images,omitempty" gorm:"column:property_images;->;-:migration"`
}

// Conversation is one row of the caller's inbox.
type Conversation struct {
	ContactID       uint      `json:"contact_id"`
	Username        string    `json:"username"`
	FullName        string    `json:"full_name"`
	ProfilePicture  string    `json:"profile_picture"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int64     `json:"unread_count"`
}
