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
)

type MilestoneService struct {
	repos *repo.Repositories
	guard *AccessGuard
	now   func() time.Time
}

func NewMilestoneService(repos *repo.Repositories, guard *AccessGuard) *MilestoneService {
	return &MilestoneService{repos: repos, guard: guard, now: time.Now}
}

type MilestoneReq struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	IsCompleted *bool      `json:"isCompleted"`
}

func (s *MilestoneService) CreateMilestone(ctx context.Context, user CurrentUser, projectId string, req MilestoneReq) (*model.ProjectMilestone, error) {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapChangeStatus); err != nil {
		return nil, err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, core.InvalidArgument("milestone name is required")
	}
	if req.DueDate == nil {
		return nil, core.InvalidArgument("milestone due date is required")
	}

	m := &model.ProjectMilestone{
		MilestoneId: id.GetUUID(),
		ProjectId:   projectId,
		Name:        strings.TrimSpace(*req.Name),
		DueDate:     *req.DueDate,
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.IsCompleted != nil && *req.IsCompleted {
		now := s.now()
		m.IsCompleted = true
		m.CompletedAt = &now
	}

	err := s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		if err := tx.Milestone.Create(ctx, m); err != nil {
			return core.Storage(err)
		}
		return appendActivity(ctx, tx, projectId, user.UserId, consts.ActivityMilestoneCreated,
			fmt.Sprintf("milestone %s created", m.Name), map[string]any{"milestoneId": m.MilestoneId})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MilestoneService) ListMilestones(ctx context.Context, user CurrentUser, projectId string) ([]model.ProjectMilestone, error) {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapView); err != nil {
		return nil, err
	}
	milestones, err := s.repos.Milestone.ListByProject(ctx, projectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	return milestones, nil
}

// UpdateMilestone edits a milestone of projectId. Completing it stamps
// the completion time, reopening clears it.
func (s *MilestoneService) UpdateMilestone(ctx context.Context, user CurrentUser, projectId, milestoneId string, req MilestoneReq) (*model.ProjectMilestone, error) {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapChangeStatus); err != nil {
		return nil, err
	}
	current, err := s.repos.Milestone.Get(ctx, milestoneId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.ResourceNotFound("milestone", milestoneId)
		}
		return nil, core.Storage(err)
	}
	if current.ProjectId != projectId {
		return nil, core.ResourceNotFound("milestone", milestoneId)
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, core.InvalidArgument("milestone name is required")
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	completed := false
	if req.IsCompleted != nil && *req.IsCompleted != current.IsCompleted {
		fields["is_completed"] = *req.IsCompleted
		if *req.IsCompleted {
			fields["completed_at"] = s.now()
			completed = true
		} else {
			fields["completed_at"] = nil
		}
	}
	if len(fields) == 0 {
		return current, nil
	}

	var updated *model.ProjectMilestone
	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		if err := tx.Milestone.Update(ctx, milestoneId, fields); err != nil {
			return core.Storage(err)
		}
		m, err := tx.Milestone.Get(ctx, milestoneId)
		if err != nil {
			return core.Storage(err)
		}
		updated = m
		if !completed {
			return nil
		}
		return appendActivity(ctx, tx, projectId, user.UserId, consts.ActivityMilestoneCompleted,
			fmt.Sprintf("milestone %s completed", m.Name), map[string]any{"milestoneId": milestoneId})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
