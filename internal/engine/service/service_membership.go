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
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
)

// MembershipResolver derives the role a user holds inside a project.
type MembershipResolver struct {
	repos *repo.Repositories
}

func NewMembershipResolver(repos *repo.Repositories) *MembershipResolver {
	return &MembershipResolver{repos: repos}
}

// standing is the resolved relation between a user and a project.
type standing struct {
	user   *model.User
	member *model.ProjectMember
	role   model.Role
}

func (m *MembershipResolver) resolve(ctx context.Context, userId, projectId string) (*standing, error) {
	user, err := m.repos.User.Get(ctx, userId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.UserNotFound(userId)
		}
		return nil, core.Storage(err)
	}
	s := &standing{user: user, role: user.GlobalRole}
	if user.IsAdmin() {
		s.role = model.RoleAdmin
		return s, nil
	}

	member, err := m.repos.ProjectMember.GetActive(ctx, projectId, userId)
	switch {
	case err == nil:
		s.member = member
		s.role = member.Role
	case !repo.IsNotFound(err):
		return nil, core.Storage(err)
	}
	return s, nil
}

// EffectiveRole is admin for global admins, else the active membership
// role, else the global role.
func (m *MembershipResolver) EffectiveRole(ctx context.Context, userId, projectId string) (model.Role, error) {
	s, err := m.resolve(ctx, userId, projectId)
	if err != nil {
		return "", err
	}
	return s.role, nil
}

// Membership returns the active membership or nil.
func (m *MembershipResolver) Membership(ctx context.Context, userId, projectId string) (*model.ProjectMember, error) {
	member, err := m.repos.ProjectMember.GetActive(ctx, projectId, userId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, core.Storage(err)
	}
	return member, nil
}

// CrossProjectVisibility lets a product owner see projects created by an
// admin for whom they already own another project.
func (m *MembershipResolver) CrossProjectVisibility(ctx context.Context, userId, projectId string) (bool, error) {
	s, err := m.resolve(ctx, userId, projectId)
	if err != nil {
		return false, err
	}
	return m.crossProject(ctx, s, projectId)
}

func (m *MembershipResolver) crossProject(ctx context.Context, s *standing, projectId string) (bool, error) {
	if s.user.GlobalRole != model.RoleProductOwner && s.role != model.RoleProductOwner {
		return false, nil
	}
	ok, err := m.repos.Project.SharesAdminPortfolio(ctx, s.user.UserId, projectId)
	if err != nil {
		return false, core.Storage(err)
	}
	return ok, nil
}
