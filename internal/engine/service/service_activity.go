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

	"github.com/bytedance/sonic"
	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"gorm.io/datatypes"
)

const defaultActivityLimit = 50

// ActivityService exposes the append-only project history.
type ActivityService struct {
	repos *repo.Repositories
	guard *AccessGuard
}

func NewActivityService(repos *repo.Repositories, guard *AccessGuard) *ActivityService {
	return &ActivityService{repos: repos, guard: guard}
}

// List returns the newest entries of a project the user can view.
func (s *ActivityService) List(ctx context.Context, user CurrentUser, projectId string, limit int) ([]model.ActivityLog, error) {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapView); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = defaultActivityLimit
	}
	logs, err := s.repos.Activity.ListByProject(ctx, projectId, limit)
	if err != nil {
		return nil, core.Storage(err)
	}
	return logs, nil
}

// appendActivity writes one history row through tx.
func appendActivity(ctx context.Context, tx *repo.Repositories, projectId, userId, activityType, description string, extra map[string]any) error {
	data, err := encodeJSON(extra)
	if err != nil {
		return err
	}
	entry := &model.ActivityLog{
		ProjectId:    projectId,
		UserId:       userId,
		ActivityType: activityType,
		Description:  description,
		ExtraData:    data,
	}
	return core.Storage(tx.Activity.Append(ctx, entry))
}

func encodeJSON(v map[string]any) (datatypes.JSON, error) {
	if len(v) == 0 {
		return datatypes.JSON("{}"), nil
	}
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil, core.Storage(err)
	}
	return datatypes.JSON(raw), nil
}

func decodeJSON(raw datatypes.JSON) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := map[string]any{}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
