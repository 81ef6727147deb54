package repository

import (
	"context"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, recipientID, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return GetDB(ctx, r.db).Create(n).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	var items []model.Notification
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offsetFor(page, limit)).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
