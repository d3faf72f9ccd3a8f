package controller

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/pkg/database"
	"diyari_backend/pkg/realtime"

	"github.com/gofiber/fiber/v2"
)

const streamHeartbeat = 30 * time.Second

// GetNotifications returns the caller's notifications newest first, each
// with the related entities its type points at.
func GetNotifications(c *fiber.Ctx) error {
	_, limit, offset := pagination(c, 20)

	q := database.GetDB().
		Preload("Actor").
		Preload("Property").
		Preload("PropertyRequest").
		Preload("Message").
		Preload("Comment").
		Where("user_id = ?", currentUserID(c))
	if c.Query("unread_only") == "true" {
		q = q.Where("is_read = ?", false)
	}

	notifications := []model.Notification{}
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch notifications")
	}

	for i := range notifications {
		if err := notifications[i].Resolve(); err != nil {
			log.Printf("Notification %d: %v", notifications[i].ID, err)
		}
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

func GetUnreadCount(c *fiber.Ctx) error {
	var count int64
	if err := database.GetDB().Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", currentUserID(c), false).
		Count(&count).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get unread count")
	}

	return c.JSON(fiber.Map{"count": count})
}

func MarkNotificationRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Notification not found")
	}

	result := database.GetDB().Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, currentUserID(c)).
		Update("is_read", true)
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to mark notification as read")
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "Notification not found")
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func MarkAllNotificationsRead(c *fiber.Ctx) error {
	result := database.GetDB().Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", currentUserID(c), false).
		Update("is_read", true)
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to mark notifications as read")
	}

	return c.JSON(fiber.Map{
		"message":       "All notifications marked as read",
		"updated_count": result.RowsAffected,
	})
}

func DeleteNotification(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Notification not found")
	}

	result := database.GetDB().
		Where("id = ? AND user_id = ?", id, currentUserID(c)).
		Delete(&model.Notification{})
	if result.Error != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete notification")
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "Notification not found")
	}

	return c.JSON(fiber.Map{"message": "Notification deleted successfully"})
}

// StreamNotifications keeps a server-sent event stream open and forwards
// every notification committed for the caller.
func StreamNotifications(c *fiber.Ctx) error {
	userID := currentUserID(c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	broker := realtime.DefaultBroker
	events := broker.Subscribe(userID)
	done := c.Context().Done()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer broker.Unsubscribe(userID, events)

		ready, _ := json.Marshal(fiber.Map{"user_id": userID, "at": time.Now()})
		if err := writeEvent(w, "ready", ready); err != nil {
			return
		}

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-done:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, event.Type, event.Data); err != nil {
					log.Printf("[SSE] user %d disconnected: %v", userID, err)
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}

func writeEvent(w *bufio.Writer, event string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
