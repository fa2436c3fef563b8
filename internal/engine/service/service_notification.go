// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"

	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/metrics"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/internal/pkg/notify"
	"github.com/go-arcade/agileboard/pkg/event"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/go-arcade/agileboard/pkg/log"
)

// NotificationService owns the notification rows of the current user and
// the staging of new ones inside business transactions.
type NotificationService struct {
	repos    *repo.Repositories
	bus      *event.EventBus
	observer *metrics.Collectors
}

func NewNotificationService(repos *repo.Repositories, bus *event.EventBus, observer *metrics.Collectors) *NotificationService {
	return &NotificationService{repos: repos, bus: bus, observer: observer}
}

func newNotification(userId, kind, content, entityId string, data map[string]any) (model.Notification, error) {
	raw, err := encodeJSON(data)
	if err != nil {
		return model.Notification{}, err
	}
	return model.Notification{
		NotificationId: id.GetUUID(),
		UserId:         userId,
		Content:        content,
		Type:           kind,
		EntityId:       entityId,
		Data:           raw,
	}, nil
}

// stage writes notifications through tx. They are published by publish
// once the transaction has committed.
func (s *NotificationService) stage(ctx context.Context, tx *repo.Repositories, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return core.Storage(tx.Notification.Create(ctx, notifications))
}

// publish announces committed notifications. Delivery is best effort.
func (s *NotificationService) publish(notifications []model.Notification) {
	for i := range notifications {
		n := &notifications[i]
		s.observer.ObserveNotification(n.Type, 1)
		if s.bus == nil {
			continue
		}
		s.bus.Publish(notify.NotificationCreated{
			NotificationId: n.NotificationId,
			UserId:         n.UserId,
			Type:           n.Type,
			Content:        n.Content,
			EntityId:       n.EntityId,
			Data:           decodeJSON(n.Data),
		})
	}
}

// List returns the user's notifications, newest first. With markAsRead
// the unread ones are flagged read after being loaded, so the result still
// shows which were new.
func (s *NotificationService) List(ctx context.Context, user CurrentUser, markAsRead bool) ([]model.Notification, error) {
	notifications, err := s.repos.Notification.ListByUser(ctx, user.UserId)
	if err != nil {
		return nil, core.Storage(err)
	}
	if !markAsRead {
		return notifications, nil
	}

	unread := make([]string, 0, len(notifications))
	for _, n := range notifications {
		if !n.Read {
			unread = append(unread, n.NotificationId)
		}
	}
	if len(unread) > 0 {
		if _, err := s.repos.Notification.MarkRead(ctx, user.UserId, unread...); err != nil {
			log.Ctx(ctx).Warnw("mark notifications read failed", "user", user.UserId, "error", err)
		}
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, user CurrentUser, notificationId string) error {
	if _, err := s.repos.Notification.Get(ctx, user.UserId, notificationId); err != nil {
		if repo.IsNotFound(err) {
			return core.ResourceNotFound("notification", notificationId)
		}
		return core.Storage(err)
	}
	_, err := s.repos.Notification.MarkRead(ctx, user.UserId, notificationId)
	return core.Storage(err)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, user CurrentUser) (int64, error) {
	n, err := s.repos.Notification.MarkAllRead(ctx, user.UserId)
	if err != nil {
		return 0, core.Storage(err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, user CurrentUser, notificationId string) error {
	n, err := s.repos.Notification.Delete(ctx, user.UserId, notificationId)
	if err != nil {
		return core.Storage(err)
	}
	if n == 0 {
		return core.ResourceNotFound("notification", notificationId)
	}
	return nil
}

// UserDirectory resolves email recipients for the notify dispatcher.
type UserDirectory struct {
	repos *repo.Repositories
}

func NewUserDirectory(repos *repo.Repositories) *UserDirectory {
	return &UserDirectory{repos: repos}
}

func (d *UserDirectory) Recipient(ctx context.Context, userId string) (notify.Recipient, error) {
	user, err := d.repos.User.Get(ctx, userId)
	if err != nil {
		if repo.IsNotFound(err) {
			return notify.Recipient{}, core.UserNotFound(userId)
		}
		return notify.Recipient{}, core.Storage(err)
	}
	if !user.IsActive {
		return notify.Recipient{}, core.UserNotFound(userId)
	}
	return notify.Recipient{Email: user.Email, Name: user.FullName(), OptedOut: !user.EmailNotifications}, nil
}
