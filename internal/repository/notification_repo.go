package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification
func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.db.Create(n).Error
}

// ListForUser returns the user's latest notifications
func (r *NotificationRepository) ListForUser(userID uuid.UUID, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flags a notification as read. Scoped to the owner so nobody can
// touch another user's bell menu.
func (r *NotificationRepository) MarkRead(id, userID uuid.UUID) (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
