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
	"fmt"
	"strings"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/go-arcade/agileboard/pkg/statemachine"
)

// ProjectService covers project CRUD and membership.
type ProjectService struct {
	repos *repo.Repositories
	guard *AccessGuard
}

func NewProjectService(repos *repo.Repositories, guard *AccessGuard) *ProjectService {
	return &ProjectService{repos: repos, guard: guard}
}

type CreateProjectReq struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	ClientName       string     `json:"clientName"`
	Priority         string     `json:"priority"`
	OwnerId          string     `json:"ownerId"`
	ProjectManagerId string     `json:"projectManagerId"`
	StartDate        *time.Time `json:"startDate"`
	PlannedEndDate   *time.Time `json:"plannedEndDate"`
	Budget           *float64   `json:"budget"`
}

// CreateProject opens a project in planning. Product owners creating a
// project become its owner and an active product owner member.
func (s *ProjectService) CreateProject(ctx context.Context, user CurrentUser, req CreateProjectReq) (*model.Project, error) {
	creator, err := s.repos.User.Get(ctx, user.UserId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.UserNotFound(user.UserId)
		}
		return nil, core.Storage(err)
	}
	if creator.GlobalRole != model.RoleAdmin && creator.GlobalRole != model.RoleProductOwner {
		return nil, core.InsufficientRole("create-project", string(creator.GlobalRole))
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, core.InvalidArgument("project name is required")
	}
	if req.StartDate != nil && req.PlannedEndDate != nil && req.PlannedEndDate.Before(*req.StartDate) {
		return nil, core.InvalidArgument("planned end date is before the start date")
	}
	if req.OwnerId == "" {
		req.OwnerId = creator.UserId
	}
	for _, userId := range []string{req.OwnerId, req.ProjectManagerId} {
		if err := s.requireUser(ctx, userId); err != nil {
			return nil, err
		}
	}

	project := &model.Project{
		ProjectId:        id.GetUUID(),
		Name:             req.Name,
		Description:      req.Description,
		ClientName:       req.ClientName,
		OwnerId:          req.OwnerId,
		CreatedBy:        creator.UserId,
		ProjectManagerId: req.ProjectManagerId,
		Status:           statemachine.ProjectPlanning,
		Priority:         req.Priority,
		StartDate:        req.StartDate,
		PlannedEndDate:   req.PlannedEndDate,
		Budget:           req.Budget,
	}
	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		if err := tx.Project.Create(ctx, project); err != nil {
			return core.Storage(err)
		}
		if creator.GlobalRole == model.RoleProductOwner {
			if _, err := tx.ProjectMember.Upsert(ctx, project.ProjectId, creator.UserId, model.RoleProductOwner); err != nil {
				return core.Storage(err)
			}
		}
		return appendActivity(ctx, tx, project.ProjectId, creator.UserId, consts.ActivityProjectCreated,
			fmt.Sprintf("project %s created", project.Name), nil)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Infow("project created", "project", project.ProjectId, "by", creator.UserId)
	return project, nil
}

func (s *ProjectService) requireUser(ctx context.Context, userId string) error {
	if userId == "" {
		return nil
	}
	if _, err := s.repos.User.Get(ctx, userId); err != nil {
		if repo.IsNotFound(err) {
			return core.ResourceNotFound("user", userId)
		}
		return core.Storage(err)
	}
	return nil
}

func (s *ProjectService) GetProject(ctx context.Context, user CurrentUser, projectId string) (*model.Project, error) {
	d, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapView)
	if err != nil {
		return nil, err
	}
	return d.Project, nil
}

// ListProjects returns the projects the user can view, optionally
// filtered by status.
func (s *ProjectService) ListProjects(ctx context.Context, user CurrentUser, status string) ([]model.Project, error) {
	var statuses []model.ProjectStatus
	if status != "" {
		st, ok := statemachine.ParseProjectStatus(status)
		if !ok {
			return nil, core.InvalidArgument("unknown project status " + status)
		}
		statuses = append(statuses, st)
	}
	return s.guard.VisibleProjects(ctx, user, statuses...)
}

type UpdateProjectReq struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	ClientName       *string  `json:"clientName"`
	Priority         *string  `json:"priority"`
	Budget           *float64 `json:"budget"`
	OwnerId          *string  `json:"ownerId"`
	ProjectManagerId *string  `json:"projectManagerId"`
}

// UpdateProject edits project details. Owner and manager changes need
// change-status, everything else manage-members.
func (s *ProjectService) UpdateProject(ctx context.Context, user CurrentUser, projectId string, req UpdateProjectReq) (*model.Project, error) {
	capability := CapManageMembers
	if req.OwnerId != nil || req.ProjectManagerId != nil {
		capability = CapChangeStatus
	}
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), capability); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, core.InvalidArgument("project name is required")
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ClientName != nil {
		fields["client_name"] = *req.ClientName
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Budget != nil {
		fields["budget"] = *req.Budget
	}
	if req.OwnerId != nil {
		if err := s.requireUser(ctx, *req.OwnerId); err != nil {
			return nil, err
		}
		fields["owner_id"] = *req.OwnerId
	}
	if req.ProjectManagerId != nil {
		if err := s.requireUser(ctx, *req.ProjectManagerId); err != nil {
			return nil, err
		}
		fields["project_manager_id"] = *req.ProjectManagerId
	}
	if len(fields) == 0 {
		return nil, core.InvalidArgument("nothing to update")
	}

	var updated *model.Project
	err := s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		if err := tx.Project.Update(ctx, projectId, fields); err != nil {
			return core.Storage(err)
		}
		p, err := tx.Project.Get(ctx, projectId)
		if err != nil {
			return core.Storage(err)
		}
		updated = p
		changed := make([]string, 0, len(fields))
		for k := range fields {
			changed = append(changed, k)
		}
		return appendActivity(ctx, tx, projectId, user.UserId, consts.ActivityProjectUpdated,
			fmt.Sprintf("project %s updated", p.Name), map[string]any{"fields": changed})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProject removes a project and everything that belongs to it. Only
// admins and the project owner may do it. The activity log is kept.
func (s *ProjectService) DeleteProject(ctx context.Context, user CurrentUser, projectId string) error {
	actor, err := s.repos.User.Get(ctx, user.UserId)
	if err != nil {
		if repo.IsNotFound(err) {
			return core.UserNotFound(user.UserId)
		}
		return core.Storage(err)
	}
	project, err := s.repos.Project.Get(ctx, projectId)
	if err != nil {
		if repo.IsNotFound(err) {
			return core.ResourceNotFound(string(ResourceProject), projectId)
		}
		return core.Storage(err)
	}
	if !actor.IsAdmin() && project.OwnerId != actor.UserId {
		return core.InsufficientRole("delete-project", string(actor.GlobalRole))
	}

	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		n, err := tx.Project.Delete(ctx, projectId)
		if err != nil {
			return core.Storage(err)
		}
		if n == 0 {
			return core.ResourceNotFound(string(ResourceProject), projectId)
		}
		return appendActivity(ctx, tx, projectId, actor.UserId, consts.ActivityProjectDeleted,
			fmt.Sprintf("project %s deleted", project.Name), nil)
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Infow("project deleted", "project", projectId, "by", actor.UserId)
	return nil
}

func (s *ProjectService) ListMembers(ctx context.Context, user CurrentUser, projectId string) ([]model.ProjectMemberDetail, error) {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapView); err != nil {
		return nil, err
	}
	members, err := s.repos.ProjectMember.ListActive(ctx, projectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	return members, nil
}

type AddMemberReq struct {
	UserId string `json:"userId"`
	Role   string `json:"role"`
}

// AddMember adds or reactivates a member. Repeating it is harmless.
func (s *ProjectService) AddMember(ctx context.Context, user CurrentUser, projectId string, req AddMemberReq) (*model.ProjectMember, error) {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapManageMembers); err != nil {
		return nil, err
	}
	role, ok := model.ParseRole(req.Role)
	if !ok || role == model.RoleAdmin {
		return nil, core.InvalidArgument("invalid member role " + req.Role)
	}
	if req.UserId == "" {
		return nil, core.InvalidArgument("userId is required")
	}
	if err := s.requireUser(ctx, req.UserId); err != nil {
		return nil, err
	}

	var member *model.ProjectMember
	err := s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		m, err := tx.ProjectMember.Upsert(ctx, projectId, req.UserId, role)
		if err != nil {
			return core.Storage(err)
		}
		member = m
		return appendActivity(ctx, tx, projectId, user.UserId, consts.ActivityMemberAdded,
			fmt.Sprintf("member %s added as %s", req.UserId, role),
			map[string]any{"userId": req.UserId, "role": role})
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, user CurrentUser, projectId, userId string) error {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapManageMembers); err != nil {
		return err
	}
	return s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		rows, err := tx.ProjectMember.Deactivate(ctx, projectId, userId)
		if err != nil {
			return core.Storage(err)
		}
		if rows == 0 {
			return core.ResourceNotFound("member", userId)
		}
		return appendActivity(ctx, tx, projectId, user.UserId, consts.ActivityMemberRemoved,
			fmt.Sprintf("member %s removed", userId), map[string]any{"userId": userId})
	})
}
