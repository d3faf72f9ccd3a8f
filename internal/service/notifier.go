package service

import (
	"context"
	"log"
	"strconv"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/pkg/push"
	"diyari_backend/pkg/realtime"

	"gorm.io/gorm"
)

const NotificationEvent = "notification"

// Dispatch fans committed notifications out to live streams and devices.
// Realtime publish is synchronous and never blocks; push runs in the
// background. Failures are only logged.
func Dispatch(db *gorm.DB, notifications ...*model.Notification) {
	for _, n := range notifications {
		if n == nil || n.ID == 0 {
			continue
		}
		realtime.DefaultBroker.Publish(n.UserID, NotificationEvent, n)

		if push.Client != nil {
			go sendPush(db, *n)
		}
	}
}

func sendPush(db *gorm.DB, n model.Notification) {
	var tokens []string
	if err := db.Model(&model.PushToken{}).Where("user_id = ?", n.UserID).Pluck("token", &tokens).Error; err != nil {
		log.Printf("Error loading push tokens for user %d: %v", n.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stale, err := push.Client.SendToTokens(ctx, tokens, n.Title, n.Content, pushData(&n))
	if err != nil {
		log.Printf("Error sending push to user %d: %v", n.UserID, err)
	}
	PruneTokens(db, stale)
}

// PruneTokens removes device tokens FCM reported as unregistered.
func PruneTokens(db *gorm.DB, stale []string) {
	if len(stale) == 0 {
		return
	}
	if err := db.Where("token IN ?", stale).Delete(&model.PushToken{}).Error; err != nil {
		log.Printf("Error pruning %d stale push tokens: %v", len(stale), err)
	}
}

func pushData(n *model.Notification) map[string]string {
	data := map[string]string{
		"type":            string(n.Type),
		"notification_id": strconv.FormatUint(uint64(n.ID), 10),
	}
	set := func(key string, id *uint) {
		if id != nil {
			data[key] = strconv.FormatUint(uint64(*id), 10)
		}
	}
	set("actor_id", n.ActorID)
	set("property_id", n.PropertyID)
	set("property_request_id", n.PropertyRequestID)
	set("message_id", n.MessageID)
	set("comment_id", n.CommentID)
	return data
}
