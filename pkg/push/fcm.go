// pkg/push/fcm.go
package push

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmBatchSize is the SendEach limit.
const fcmBatchSize = 500

type FCMClient struct {
	client *messaging.Client
}

// Client stays nil when Firebase credentials are not configured.
var Client *FCMClient

func NewFCMClient(ctx context.Context, credentialsFile string) (*FCMClient, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{}, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("messaging client init failed: %w", err)
	}

	return &FCMClient{client: messagingClient}, nil
}

// SendToTokens delivers one notification to every token and returns the
// tokens FCM reported as unregistered so the caller can forget them.
func (f *FCMClient) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	messages := make([]*messaging.Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: "default"},
				},
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{Sound: "default"},
				Priority:     "high",
			},
		})
	}

	var stale []string
	for i := 0; i < len(messages); i += fcmBatchSize {
		end := i + fcmBatchSize
		if end > len(messages) {
			end = len(messages)
		}

		resp, err := f.client.SendEach(ctx, messages[i:end])
		if err != nil {
			return stale, fmt.Errorf("FCM batch[%d:%d] failed: %w", i, end, err)
		}

		for j, r := range resp.Responses {
			if r.Success {
				continue
			}
			if messaging.IsUnregistered(r.Error) {
				stale = append(stale, tokens[i+j])
				continue
			}
			log.Printf("FCM token %s failed: %v", maskToken(tokens[i+j]), r.Error)
		}
	}

	return stale, nil
}

// maskToken hides all but the last 6 chars for logging.
func maskToken(token string) string {
	if len(token) <= 6 {
		return token
	}
	return "..." + token[len(token)-6:]
}
