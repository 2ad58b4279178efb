package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// FCM sends pushes through Firebase Cloud Messaging
type FCM struct {
	client *messaging.Client
}

// NewFCM creates an FCM transport. It returns nil when no credentials are
// configured or Firebase cannot be initialized, which disables push.
func NewFCM(ctx context.Context, credentialsFile string) *FCM {
	if credentialsFile == "" {
		log.Warn("⚠️ Firebase credentials not provided, push notifications disabled")
		return nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		log.WithError(err).Warn("⚠️ Failed to initialize Firebase app (push notifications disabled)")
		return nil
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.WithError(err).Warn("⚠️ Failed to get messaging client (push notifications disabled)")
		return nil
	}

	log.Info("✅ Firebase FCM initialized")
	return &FCM{client: client}
}

// Send delivers one message to one token
func (f *FCM) Send(ctx context.Context, msg Message) (string, error) {
	id, err := f.client.Send(ctx, &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ClickAction: "FLUTTER_NOTIFICATION_CLICK",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	})
	if err != nil {
		return "", classify(err)
	}
	return id, nil
}

func classify(err error) error {
	if messaging.IsUnregistered(err) || messaging.IsSenderIDMismatch(err) {
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return fmt.Errorf("fcm send: %w", err)
}
