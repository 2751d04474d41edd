package service

import (
	"fmt"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
)

// NotificationService reads and manages per-user notifications. The rows
// themselves are derived from activity events by the notify trigger;
// nothing here is part of the audited mutation surface.
type NotificationService struct {
	store *store.Store
}

func NewNotificationService(st *store.Store) *NotificationService {
	return &NotificationService{store: st}
}

func (s *NotificationService) ListByUser(userID uint, unreadOnly bool, page, pageSize int) ([]model.Notification, int64, error) {
	query := s.store.DB().Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var notifications []model.Notification
	if err := query.Order("created_at desc, id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.store.DB().Model(&model.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	notification, err := s.owned(id, userID)
	if err != nil {
		return err
	}
	return s.store.DB().Model(&model.Notification{}).Where("id = ?", notification.ID).Update("is_read", true).Error
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.store.DB().Model(&model.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s *NotificationService) Delete(id, userID uint) error {
	notification, err := s.owned(id, userID)
	if err != nil {
		return err
	}
	return s.store.DB().Delete(&model.Notification{}, notification.ID).Error
}

func (s *NotificationService) owned(id, userID uint) (*model.Notification, error) {
	var notification model.Notification
	if err := s.store.DB().First(&notification, id).Error; err != nil {
		return nil, apperr.NotFound("notification", id, fmt.Sprintf("通知不存在: id=%d", id))
	}
	if notification.UserID != userID {
		return nil, apperr.NotFound("notification", id, fmt.Sprintf("通知不存在: id=%d", id))
	}
	return &notification, nil
}
