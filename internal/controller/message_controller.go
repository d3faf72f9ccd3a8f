package controller

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"diyari_backend/internal/middleware"
	"diyari_backend/internal/model"
	"diyari_backend/internal/service"
	"diyari_backend/pkg/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const notificationPreviewRunes = 100

func messageQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&model.Message{}).
		Select(`messages.*,
			senders.username AS sender_username, senders.full_name AS sender_name, senders.profile_picture AS sender_picture,
			properties.title AS property_title, properties.price AS property_price,
			COALESCE(properties.image_urls, '[]') AS property_images`).
		Joins("JOIN users senders ON senders.id = messages.sender_id").
		Joins("LEFT JOIN properties ON properties.id = messages.property_id")
}

// GetConversations lists one row per contact with the latest message and
// how many of the contact's messages the caller has not read.
func GetConversations(c *fiber.Ctx) error {
	userID := currentUserID(c)
	db := database.GetDB()

	var lastIDs []uint
	if err := db.Raw(`
        SELECT MAX(id) FROM messages
        WHERE sender_id = ? OR receiver_id = ?
        GROUP BY CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END
    `, userID, userID, userID).Scan(&lastIDs).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch conversations")
	}

	conversations := []model.Conversation{}
	if len(lastIDs) == 0 {
		return c.JSON(fiber.Map{"conversations": conversations})
	}

	var last []model.Message
	if err := db.Where("id IN ?", lastIDs).Find(&last).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch conversations")
	}

	contactIDs := make([]uint, 0, len(last))
	for _, m := range last {
		contactIDs = append(contactIDs, counterpart(m, userID))
	}

	var contacts []model.User
	if err := db.Where("id IN ?", contactIDs).Find(&contacts).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch conversations")
	}
	byID := make(map[uint]model.User, len(contacts))
	for _, u := range contacts {
		byID[u.ID] = u
	}

	var unread []struct {
		SenderID uint
		Count    int64
	}
	if err := db.Model(&model.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("sender_id").
		Scan(&unread).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch conversations")
	}
	unreadBy := make(map[uint]int64, len(unread))
	for _, u := range unread {
		unreadBy[u.SenderID] = u.Count
	}

	for _, m := range last {
		contactID := counterpart(m, userID)
		contact := byID[contactID]
		conversations = append(conversations, model.Conversation{
			ContactID:       contactID,
			Username:        contact.Username,
			FullName:        contact.FullName,
			ProfilePicture:  contact.ProfilePicture,
			LastMessage:     m.Content,
			LastMessageTime: m.CreatedAt,
			UnreadCount:     unreadBy[contactID],
		})
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessageTime.After(conversations[j].LastMessageTime)
	})

	return c.JSON(fiber.Map{"conversations": conversations})
}

func counterpart(m model.Message, userID uint) uint {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// GetConversation marks the contact's messages read, then returns the
// requested page of the thread in chronological order.
func GetConversation(c *fiber.Ctx) error {
	otherID, err := paramID(c, "userId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	userID := currentUserID(c)
	_, limit, offset := pagination(c, 50)

	db := database.GetDB()
	if err := db.Model(&model.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherID, userID, false).
		Update("is_read", true).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch messages")
	}

	messages := []model.Message{}
	if err := messageQuery(db).
		Where("(messages.sender_id = ? AND messages.receiver_id = ?) OR (messages.sender_id = ? AND messages.receiver_id = ?)",
			userID, otherID, otherID, userID).
		Order("messages.created_at DESC").Order("messages.id DESC").
		Limit(limit).Offset(offset).
		Find(&messages).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch messages")
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return c.JSON(fiber.Map{"messages": messages})
}

type SendMessageInput struct {
	ReceiverID  uint              `json:"receiver_id" validate:"required"`
	Content     string            `json:"content" validate:"required,max=5000"`
	PropertyID  *uint             `json:"property_id"`
	MessageType model.MessageType `json:"message_type" validate:"omitempty,oneof=text property_inquiry"`
}

// SendMessage stores the message and the receiver's notification together.
func SendMessage(c *fiber.Ctx) error {
	sender := middleware.CurrentUser(c)

	input := new(SendMessageInput)
	if err := c.BodyParser(input); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid input")
	}
	input.Content = strings.TrimSpace(input.Content)
	if ok, err := validateInput(c, input, "Receiver ID and content are required"); !ok {
		return err
	}
	if input.MessageType == "" {
		input.MessageType = model.MessageTypeText
	}
	if input.ReceiverID == sender.ID {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot send message to yourself")
	}

	db := database.GetDB()

	var (
		message      model.Message
		notification *model.Notification
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var receiver model.User
		if err := tx.First(&receiver, input.ReceiverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errReceiverNotFound
			}
			return err
		}
		if input.PropertyID != nil {
			if _, err := findProperty(tx, *input.PropertyID); err != nil {
				return err
			}
		}

		message = model.Message{
			SenderID:    sender.ID,
			ReceiverID:  receiver.ID,
			PropertyID:  input.PropertyID,
			Content:     input.Content,
			MessageType: input.MessageType,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		notification = model.NewNotification(
			receiver.ID,
			fmt.Sprintf("رسالة جديدة من %s", sender.DisplayName()),
			preview(message.Content, notificationPreviewRunes),
			model.NewMessage{MessageID: message.ID, SenderID: sender.ID},
		)
		return tx.Create(notification).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errReceiverNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Receiver not found")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Property not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to send message")
	}

	service.Dispatch(db, notification)

	var sent model.Message
	if err := messageQuery(db).Where("messages.id = ?", message.ID).Take(&sent).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch sent message")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent successfully",
		"data":    sent,
	})
}

var errReceiverNotFound = errors.New("receiver not found")

type PropertyInquiryInput struct {
	PropertyID uint   `json:"property_id" validate:"required"`
	Message    string `json:"message" validate:"max=5000"`
}

// SendPropertyInquiry messages a listing's owner about it.
func SendPropertyInquiry(c *fiber.Ctx) error {
	sender := middleware.CurrentUser(c)

	input := new(PropertyInquiryInput)
	if ok, err := bindJSON(c, input, "Property ID is required"); !ok {
		return err
	}

	db := database.GetDB()

	var (
		message      model.Message
		notification *model.Notification
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		property, err := findProperty(tx, input.PropertyID)
		if err != nil {
			return err
		}
		if property.UserID == sender.ID {
			return errOwnProperty
		}

		content := strings.TrimSpace(input.Message)
		if content == "" {
			content = fmt.Sprintf("مرحباً، أنا مهتم بعقارك: %s. هل يمكنك تزويدي بمزيد من التفاصيل؟", property.Title)
		}

		message = model.Message{
			SenderID:    sender.ID,
			ReceiverID:  property.UserID,
			PropertyID:  &property.ID,
			Content:     content,
			MessageType: model.MessageTypePropertyInquiry,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		notification = model.NewNotification(
			property.UserID,
			"استفسار جديد عن عقارك",
			fmt.Sprintf("%s أرسل استفساراً عن: %s", sender.DisplayName(), property.Title),
			model.NewMessage{MessageID: message.ID, SenderID: sender.ID},
		)
		return tx.Create(notification).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Property not found")
		case errors.Is(err, errOwnProperty):
			return errorJSON(c, fiber.StatusBadRequest, "Cannot send inquiry to your own property")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to send inquiry")
	}

	service.Dispatch(db, notification)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Property inquiry sent successfully",
		"message_id": message.ID,
	})
}

var errOwnProperty = errors.New("inquiry to own property")

// DeleteMessage lets only the sender remove a message.
func DeleteMessage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Message not found or not authorized")
	}

	result := database.GetDB().
		Where("id = ? AND sender_id = ?", id, currentUserID(c)).
		Delete(&model.Message{})
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete message")
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "Message not found or not authorized")
	}

	return c.JSON(fiber.Map{"message": "Message deleted successfully"})
}
