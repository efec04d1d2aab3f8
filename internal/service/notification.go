package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
	"github.com/dentanet/api/internal/ws"
	"github.com/dentanet/api/pkg/notification"
)

const notificationFeedLimit = 50

// NotificationService persists notifications and fans them out over the
// WebSocket feed and FCM push. Delivery is best effort; only the database
// row is authoritative.
type NotificationService struct {
	notifications *repository.NotificationRepository
	hub           *ws.Hub
	push          *notification.PushService
}

func NewNotificationService(notifications *repository.NotificationRepository, hub *ws.Hub, push *notification.PushService) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		hub:           hub,
		push:          push,
	}
}

// Notify creates the notification row and pushes it to the user's open
// feeds and devices.
func (s *NotificationService) Notify(userID uuid.UUID, nType, title, message string) error {
	n := &model.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    nType,
		Title:   title,
		Message: message,
	}
	if err := s.notifications.Create(n); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.SendToUser(userID, &model.WSEvent{
			Type:    model.WSEventNotification,
			Payload: n,
		})
	}

	go func() {
		if err := s.push.SendToUser(context.Background(), userID, title, message, map[string]string{
			"type":            nType,
			"notification_id": n.ID.String(),
		}); err != nil {
			log.Printf("⚠️  Push delivery failed for %s: %v", userID, err)
		}
	}()

	return nil
}

// Create handles the admin endpoint for manual notifications
func (s *NotificationService) Create(req model.CreateNotificationRequest) error {
	return s.Notify(req.UserID, req.Type, req.Title, req.Message)
}

// ListForUser returns the newest notifications for the bell menu
func (s *NotificationService) ListForUser(userID uuid.UUID) ([]model.Notification, error) {
	return s.notifications.ListForUser(userID, notificationFeedLimit)
}

// MarkRead flags one of the caller's notifications as seen
func (s *NotificationService) MarkRead(id, userID uuid.UUID) error {
	affected, err := s.notifications.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
