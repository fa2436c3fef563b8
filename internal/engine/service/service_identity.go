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
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/go-arcade/agileboard/pkg/log"
)

// IdentityService maps identity provider accounts onto local users.
type IdentityService struct {
	repos         *repo.Repositories
	provider      identity.Provider
	catalog       *Catalog
	autoProvision bool
}

func NewIdentityService(repos *repo.Repositories, provider identity.Provider, catalog *Catalog, conf identity.Conf) *IdentityService {
	return &IdentityService{
		repos:         repos,
		provider:      provider,
		catalog:       catalog,
		autoProvision: !conf.DisableProvision,
	}
}

// Authenticate validates a bearer token and returns the local user,
// creating or linking it on first sight.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, core.AuthenticationFailure("missing bearer token", nil)
	}
	payload, err := s.provider.Validate(ctx, token)
	if err != nil {
		return nil, core.AuthenticationFailure("token rejected by "+s.provider.Name(), err)
	}
	user, err := s.Sync(ctx, payload)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, core.AuthenticationFailure("user is disabled", nil)
	}
	return user, nil
}

// Sync finds the user by external id, then by email, and provisions it
// when neither matches and provisioning is on.
func (s *IdentityService) Sync(ctx context.Context, payload *identity.Payload) (*model.User, error) {
	user, err := s.repos.User.GetByExternalId(ctx, payload.Id)
	if err == nil {
		return user, nil
	}
	if !repo.IsNotFound(err) {
		return nil, core.Storage(err)
	}

	user, err = s.repos.User.GetByEmail(ctx, payload.Email)
	switch {
	case err == nil:
		return s.link(ctx, user, payload)
	case !repo.IsNotFound(err):
		return nil, core.Storage(err)
	}

	if !s.autoProvision {
		return nil, core.UserNotFound(payload.Email)
	}
	return s.provision(ctx, payload)
}

func (s *IdentityService) link(ctx context.Context, user *model.User, payload *identity.Payload) (*model.User, error) {
	if ext := user.ExternalID(); ext != "" {
		if ext != payload.Id {
			return nil, core.AuthenticationFailure("email is linked to another identity", nil)
		}
		return user, nil
	}

	rows, err := s.repos.User.LinkExternalId(ctx, user.UserId, payload.Id)
	if err != nil {
		return nil, core.Storage(err)
	}
	if rows == 0 {
		// linked concurrently, the stored id decides
		current, err := s.repos.User.Get(ctx, user.UserId)
		if err != nil {
			return nil, core.Storage(err)
		}
		if current.ExternalID() != payload.Id {
			return nil, core.AuthenticationFailure("email is linked to another identity", nil)
		}
		return current, nil
	}
	log.Ctx(ctx).Infow("linked external identity", "user", user.UserId, "provider", s.provider.Name())
	externalId := payload.Id
	user.AuthExternalId = &externalId
	return user, nil
}

func (s *IdentityService) provision(ctx context.Context, payload *identity.Payload) (*model.User, error) {
	role, ok := model.ParseRole(payload.Role())
	if !ok {
		role = model.RoleMember
	}
	first, last := payload.Names()
	externalId := payload.Id
	user := &model.User{
		UserId:             id.GetUUID(),
		AuthExternalId:     &externalId,
		Email:              payload.Email,
		FirstName:          first,
		LastName:           last,
		GlobalRole:         role,
		IsActive:           true,
		EmailNotifications: true,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		if !repo.IsDuplicateKey(err) {
			return nil, core.Storage(err)
		}
		// a concurrent request created it first
		existing, err := s.repos.User.GetByExternalId(ctx, payload.Id)
		if err != nil {
			return nil, core.Storage(err)
		}
		return existing, nil
	}
	log.Ctx(ctx).Infow("provisioned user", "user", user.UserId, "email", user.Email, "role", role)
	return user, nil
}

// SyncRole pushes the local global role to the provider metadata.
func (s *IdentityService) SyncRole(ctx context.Context, current CurrentUser) (*model.User, error) {
	user, err := s.loadUser(ctx, current.UserId)
	if err != nil {
		return nil, err
	}
	if user.ExternalID() == "" {
		return nil, core.InvalidArgument("user is not linked to an identity")
	}
	if err := s.provider.UpdateMetadata(ctx, user.ExternalID(), map[string]any{"role": user.GlobalRole}); err != nil {
		return nil, core.Storage(err)
	}
	return user, nil
}

// SetGlobalRole changes the global role of userId. Only admins may.
func (s *IdentityService) SetGlobalRole(ctx context.Context, actor CurrentUser, userId, role string) (*model.User, error) {
	admin, err := s.loadUser(ctx, actor.UserId)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, core.InsufficientRole("set-role", string(admin.GlobalRole))
	}
	newRole, ok := model.ParseRole(role)
	if !ok {
		return nil, core.InvalidArgument("unknown role " + role)
	}

	user, err := s.loadUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user.GlobalRole != newRole {
		if _, err := s.repos.User.UpdateGlobalRole(ctx, userId, newRole); err != nil {
			return nil, core.Storage(err)
		}
		user.GlobalRole = newRole
	}

	if ext := user.ExternalID(); ext != "" {
		if err := s.provider.UpdateMetadata(ctx, ext, map[string]any{"role": newRole}); err != nil {
			log.Ctx(ctx).Warnw("push role to identity provider failed", "user", userId, "error", err)
		}
	}
	log.Ctx(ctx).Infow("global role changed", "user", userId, "role", newRole, "by", actor.UserId)
	return user, nil
}

type Me struct {
	*model.User
	Capabilities []Capability `json:"capabilities"`
}

// Me returns the caller with the capabilities their global role can hold.
func (s *IdentityService) Me(ctx context.Context, current CurrentUser) (*Me, error) {
	user, err := s.loadUser(ctx, current.UserId)
	if err != nil {
		return nil, err
	}
	return &Me{User: user, Capabilities: s.catalog.Capabilities(user.GlobalRole)}, nil
}

func (s *IdentityService) loadUser(ctx context.Context, userId string) (*model.User, error) {
	user, err := s.repos.User.Get(ctx, userId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.UserNotFound(userId)
		}
		return nil, core.Storage(err)
	}
	return user, nil
}
