package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a per-user message shown in the portal bell menu
type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Type      string    `json:"type" gorm:"size:30;not null"` // booking, evaluation, system, ...
	Title     string    `json:"title" gorm:"size:200;not null"`
	Message   string    `json:"message" gorm:"size:1000;not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// ========== WebSocket feed events ==========

type WSEventType string

const (
	WSEventNotification WSEventType = "notification"
	WSEventAnnouncement WSEventType = "announcement"
)

// WSEvent is the envelope pushed over the notification feed
type WSEvent struct {
	Type    WSEventType `json:"type"`
	Payload interface{} `json:"payload"`
}
