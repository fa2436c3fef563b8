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
	"strings"

	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/go-arcade/agileboard/pkg/log"
)

// UserService is the local user directory: admin managed accounts and the
// per-user notification preferences.
type UserService struct {
	repos *repo.Repositories
}

func NewUserService(repos *repo.Repositories) *UserService {
	return &UserService{repos: repos}
}

func (s *UserService) requireAdmin(ctx context.Context, actor CurrentUser, action string) (*model.User, error) {
	admin, err := s.repos.User.Get(ctx, actor.UserId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.UserNotFound(actor.UserId)
		}
		return nil, core.Storage(err)
	}
	if !admin.IsAdmin() {
		return nil, core.InsufficientRole(action, string(admin.GlobalRole))
	}
	return admin, nil
}

// ListUsers returns the users the admin created and every user nobody
// created.
func (s *UserService) ListUsers(ctx context.Context, actor CurrentUser) ([]model.User, error) {
	admin, err := s.requireAdmin(ctx, actor, "list-users")
	if err != nil {
		return nil, err
	}
	users, err := s.repos.User.ListManagedBy(ctx, admin.UserId)
	if err != nil {
		return nil, core.Storage(err)
	}
	return users, nil
}

type CreateUserReq struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// CreateUser registers a user before their first sign-in. The identity is
// linked by email when they first authenticate. Admin accounts cannot be
// created this way.
func (s *UserService) CreateUser(ctx context.Context, actor CurrentUser, req CreateUserReq) (*model.User, error) {
	admin, err := s.requireAdmin(ctx, actor, "create-user")
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, core.InvalidArgument("a valid email is required")
	}
	role := model.RoleMember
	if req.Role != "" {
		parsed, ok := model.ParseRole(req.Role)
		if !ok {
			return nil, core.InvalidArgument("unknown role " + req.Role)
		}
		role = parsed
	}
	if role == model.RoleAdmin {
		return nil, core.InvalidArgument("admin users cannot be created")
	}

	user := &model.User{
		UserId:             id.GetUUID(),
		Email:              email,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		GlobalRole:         role,
		IsActive:           true,
		EmailNotifications: true,
		CreatedBy:          admin.UserId,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		if repo.IsDuplicateKey(err) {
			return nil, core.InvalidArgument("email " + email + " is already registered")
		}
		return nil, core.Storage(err)
	}
	log.Ctx(ctx).Infow("user created", "user", user.UserId, "role", role, "by", admin.UserId)
	return user, nil
}

// SetEmailNotifications turns notification emails on or off for the
// caller. In-app notifications are always kept.
func (s *UserService) SetEmailNotifications(ctx context.Context, current CurrentUser, enabled bool) (*model.User, error) {
	if _, err := s.repos.User.UpdateEmailNotifications(ctx, current.UserId, enabled); err != nil {
		return nil, core.Storage(err)
	}
	user, err := s.repos.User.Get(ctx, current.UserId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.UserNotFound(current.UserId)
		}
		return nil, core.Storage(err)
	}
	return user, nil
}
