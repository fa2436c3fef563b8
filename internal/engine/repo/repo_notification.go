package repo

import (
	"context"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"gorm.io/gorm"
)

type INotificationRepository interface {
	Create(ctx context.Context, notifications []model.Notification) error
	Get(ctx context.Context, userId, notificationId string) (*model.Notification, error)
	ListByUser(ctx context.Context, userId string) ([]model.Notification, error)
	MarkRead(ctx context.Context, userId string, notificationIds ...string) (int64, error)
	MarkAllRead(ctx context.Context, userId string) (int64, error)
	Delete(ctx context.Context, userId, notificationId string) (int64, error)
}

type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) INotificationRepository {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

// Get returns the notification only when userId owns it.
func (r *NotificationRepo) Get(ctx context.Context, userId, notificationId string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND notification_id = ?", userId, notificationId).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userId string) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).Order("id DESC").Find(&list).Error
	return list, err
}

// MarkRead only touches rows owned by userId.
func (r *NotificationRepo) MarkRead(ctx context.Context, userId string, notificationIds ...string) (int64, error) {
	if len(notificationIds) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND notification_id IN ?", userId, notificationIds).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userId string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepo) Delete(ctx context.Context, userId, notificationId string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND notification_id = ?", userId, notificationId).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
