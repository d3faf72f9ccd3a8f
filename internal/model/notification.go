package model

import (
	"errors"
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationPropertyMatch NotificationType = "property_match"
	NotificationMessage       NotificationType = "message"
	NotificationLike          NotificationType = "like"
	NotificationComment       NotificationType = "comment"
	NotificationFollow        NotificationType = "follow"
)

var ErrUnknownNotificationType = errors.New("unknown notification type")

// Notification carries one typed, nullable reference per entity kind it can
// point at. Which of them are set is decided by the Subject it was built from.
type Notification struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	UserID            uint             `json:"user_id" gorm:"not null;index:idx_notifications_user_read"`
	Type              NotificationType `json:"type" gorm:"size:30;not null;index"`
	Title             string           `json:"title" gorm:"size:255;not null"`
	Content           string           `json:"content" gorm:"type:text"`
	IsRead            bool             `json:"is_read" gorm:"not null;default:false;index:idx_notifications_user_read"`
	ActorID           *uint            `json:"actor_id,omitempty"`
	PropertyID        *uint            `json:"property_id,omitempty" gorm:"index"`
	PropertyRequestID *uint            `json:"property_request_id,omitempty" gorm:"index"`
	MessageID         *uint            `json:"message_id,omitempty"`
	CommentID         *uint            `json:"comment_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at" gorm:"index"`

	User            User             `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Actor           *User            `json:"-" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
	Property        *Property        `json:"-" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	PropertyRequest *PropertyRequest `json:"-" gorm:"foreignKey:PropertyRequestID;constraint:OnDelete:CASCADE"`
	Message         *Message         `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	Comment         *Comment         `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`

	Related map[string]interface{} `json:"related,omitempty" gorm:"-"`
}

// Subject is what a notification is about. The set of variants is closed.
type Subject interface {
	Type() NotificationType
	// Reference builds the related payload from the associations the
	// variant owns; they must be preloaded by the caller.
	Reference(n *Notification) map[string]interface{}
	bind(n *Notification)
}

type PropertyMatch struct {
	RequestID  uint
	PropertyID uint
}

type NewMessage struct {
	MessageID uint
	SenderID  uint
}

type PropertyLiked struct {
	PropertyID uint
	ActorID    uint
}

type PropertyCommented struct {
	PropertyID uint
	CommentID  uint
	ActorID    uint
}

type NewFollower struct {
	FollowerID uint
}

func NewNotification(recipientID uint, title, content string, subject Subject) *Notification {
	n := &Notification{
		UserID:  recipientID,
		Type:    subject.Type(),
		Title:   title,
		Content: content,
	}
	subject.bind(n)
	return n
}

// Subject decodes the variant stored in the typed columns.
func (n *Notification) Subject() (Subject, error) {
	switch n.Type {
	case NotificationPropertyMatch:
		if n.PropertyRequestID == nil || n.PropertyID == nil {
			return nil, fmt.Errorf("notification %d: property_match without request or property", n.ID)
		}
		return PropertyMatch{RequestID: *n.PropertyRequestID, PropertyID: *n.PropertyID}, nil
	case NotificationMessage:
		if n.MessageID == nil || n.ActorID == nil {
			return nil, fmt.Errorf("notification %d: message without message or sender", n.ID)
		}
		return NewMessage{MessageID: *n.MessageID, SenderID: *n.ActorID}, nil
	case NotificationLike:
		if n.PropertyID == nil || n.ActorID == nil {
			return nil, fmt.Errorf("notification %d: like without property or actor", n.ID)
		}
		return PropertyLiked{PropertyID: *n.PropertyID, ActorID: *n.ActorID}, nil
	case NotificationComment:
		if n.PropertyID == nil || n.CommentID == nil || n.ActorID == nil {
			return nil, fmt.Errorf("notification %d: comment without property, comment or actor", n.ID)
		}
		return PropertyCommented{PropertyID: *n.PropertyID, CommentID: *n.CommentID, ActorID: *n.ActorID}, nil
	case NotificationFollow:
		if n.ActorID == nil {
			return nil, fmt.Errorf("notification %d: follow without follower", n.ID)
		}
		return NewFollower{FollowerID: *n.ActorID}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNotificationType, n.Type)
}

// Resolve fills Related from the notification's own variant.
func (n *Notification) Resolve() error {
	subject, err := n.Subject()
	if err != nil {
		return err
	}
	n.Related = subject.Reference(n)
	return nil
}

func (PropertyMatch) Type() NotificationType { return NotificationPropertyMatch }

func (s PropertyMatch) bind(n *Notification) {
	n.PropertyRequestID = uintPtr(s.RequestID)
	n.PropertyID = uintPtr(s.PropertyID)
}

func (s PropertyMatch) Reference(n *Notification) map[string]interface{} {
	ref := map[string]interface{}{
		"request_id":  s.RequestID,
		"property_id": s.PropertyID,
	}
	if r := n.PropertyRequest; r != nil {
		ref["request"] = map[string]interface{}{
			"id":            r.ID,
			"title":         r.Title,
			"property_type": r.PropertyType,
			"category":      r.Category,
			"max_price":     r.MaxPrice,
			"status":        r.Status,
		}
	}
	if p := n.Property; p != nil {
		ref["property"] = propertySummary(p)
	}
	return ref
}

func (NewMessage) Type() NotificationType { return NotificationMessage }

func (s NewMessage) bind(n *Notification) {
	n.MessageID = uintPtr(s.MessageID)
	n.ActorID = uintPtr(s.SenderID)
}

func (s NewMessage) Reference(n *Notification) map[string]interface{} {
	ref := map[string]interface{}{
		"message_id": s.MessageID,
		"sender_id":  s.SenderID,
	}
	if m := n.Message; m != nil {
		ref["message"] = map[string]interface{}{
			"id":           m.ID,
			"message_type": m.MessageType,
			"property_id":  m.PropertyID,
			"created_at":   m.CreatedAt,
		}
	}
	if n.Actor != nil {
		ref["sender"] = userSummary(n.Actor)
	}
	return ref
}

func (PropertyLiked) Type() NotificationType { return NotificationLike }

func (s PropertyLiked) bind(n *Notification) {
	n.PropertyID = uintPtr(s.PropertyID)
	n.ActorID = uintPtr(s.ActorID)
}

func (s PropertyLiked) Reference(n *Notification) map[string]interface{} {
	ref := map[string]interface{}{
		"property_id": s.PropertyID,
		"actor_id":    s.ActorID,
	}
	if n.Property != nil {
		ref["property"] = propertySummary(n.Property)
	}
	if n.Actor != nil {
		ref["actor"] = userSummary(n.Actor)
	}
	return ref
}

func (PropertyCommented) Type() NotificationType { return NotificationComment }

func (s PropertyCommented) bind(n *Notification) {
	n.PropertyID = uintPtr(s.PropertyID)
	n.CommentID = uintPtr(s.CommentID)
	n.ActorID = uintPtr(s.ActorID)
}

func (s PropertyCommented) Reference(n *Notification) map[string]interface{} {
	ref := map[string]interface{}{
		"property_id": s.PropertyID,
		"comment_id":  s.CommentID,
		"actor_id":    s.ActorID,
	}
	if n.Property != nil {
		ref["property"] = propertySummary(n.Property)
	}
	if c := n.Comment; c != nil {
		ref["comment"] = map[string]interface{}{
			"id":         c.ID,
			"content":    c.Content,
			"created_at": c.CreatedAt,
		}
	}
	if n.Actor != nil {
		ref["actor"] = userSummary(n.Actor)
	}
	return ref
}

func (NewFollower) Type() NotificationType { return NotificationFollow }

func (s NewFollower) bind(n *Notification) {
	n.ActorID = uintPtr(s.FollowerID)
}

func (s NewFollower) Reference(n *Notification) map[string]interface{} {
	ref := map[string]interface{}{"follower_id": s.FollowerID}
	if n.Actor != nil {
		ref["follower"] = userSummary(n.Actor)
	}
	return ref
}

func propertySummary(p *Property) map[string]interface{} {
	var cover string
	if len(p.ImageURLs) > 0 {
		cover = p.ImageURLs[0]
	}
	return map[string]interface{}{
		"id":       p.ID,
		"title":    p.Title,
		"price":    p.Price,
		"currency": p.Currency,
		"city":     p.City,
		"image":    cover,
	}
}

func userSummary(u *User) map[string]interface{} {
	return map[string]interface{}{
		"id":              u.ID,
		"username":        u.Username,
		"full_name":       u.FullName,
		"profile_picture": u.ProfilePicture,
	}
}

func uintPtr(v uint) *uint {
	return &v
}
