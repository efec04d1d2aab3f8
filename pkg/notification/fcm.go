package notification

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/dentanet/api/internal/repository"
)

// PushService delivers FCM push notifications to a user's registered
// devices. A nil receiver is valid and sends nothing, so the rest of the
// app never has to care whether Firebase is configured.
type PushService struct {
	client   *messaging.Client
	userRepo *repository.UserRepository
}

// NewPushService initializes Firebase messaging. Missing or broken
// credentials disable push without blocking server startup.
func NewPushService(credentialsFile string, userRepo *repository.UserRepository) (*PushService, error) {
	if credentialsFile == "" {
		log.Println("⚠️ Firebase credentials not provided, push notifications disabled")
		return nil, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("⚠️ Failed to initialize Firebase app: %v (push notifications disabled)", err)
		return nil, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("⚠️ Failed to get messaging client: %v", err)
		return nil, nil
	}

	log.Println("✅ Firebase FCM initialized")
	return &PushService{
		client:   client,
		userRepo: userRepo,
	}, nil
}

// SendToUser pushes a notification to every device the user has registered.
// Tokens FCM reports as unregistered are pruned so dead devices stop
// accumulating.
func (s *PushService) SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) error {
	if s == nil || s.client == nil {
		return nil
	}

	devices, err := s.userRepo.GetUserDevices(userID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.FCMToken)
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	br, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending multicast message: %w", err)
	}

	for idx, resp := range br.Responses {
		if resp.Success {
			continue
		}
		if messaging.IsUnregistered(resp.Error) {
			if err := s.userRepo.RemoveDeviceByToken(tokens[idx]); err != nil {
				log.Printf("⚠️ Failed to prune dead FCM token: %v", err)
			}
			continue
		}
		log.Printf("⚠️ FCM failure for token %s: %v", tokens[idx], resp.Error)
	}

	return nil
}
