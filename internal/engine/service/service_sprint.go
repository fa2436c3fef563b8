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
)

// SprintService manages sprints and the stories and tasks completion is
// measured on.
type SprintService struct {
	repos *repo.Repositories
	guard *AccessGuard
	now   func() time.Time
}

func NewSprintService(repos *repo.Repositories, guard *AccessGuard) *SprintService {
	return &SprintService{repos: repos, guard: guard, now: time.Now}
}

type CreateSprintReq struct {
	Name      string     `json:"name"`
	Goal      string     `json:"goal"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (s *SprintService) CreateSprint(ctx context.Context, user CurrentUser, projectId string, req CreateSprintReq) (*model.Sprint, error) {
	d, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapChangeStatus)
	if err != nil {
		return nil, err
	}
	if err := CheckActionable(d.Project); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, core.InvalidArgument("sprint name is required")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, core.InvalidArgument("sprint ends before it starts")
	}

	sprint := &model.Sprint{
		SprintId:  id.GetUUID(),
		ProjectId: projectId,
		Name:      req.Name,
		Goal:      req.Goal,
		Status:    model.SprintPlanning,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		if err := tx.Sprint.Create(ctx, sprint); err != nil {
			return core.Storage(err)
		}
		return appendActivity(ctx, tx, projectId, user.UserId, consts.ActivitySprintCreated,
			fmt.Sprintf("sprint %s created", sprint.Name), map[string]any{"sprintId": sprint.SprintId})
	})
	if err != nil {
		return nil, err
	}
	return sprint, nil
}

func (s *SprintService) ListSprints(ctx context.Context, user CurrentUser, projectId string) ([]model.Sprint, error) {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapView); err != nil {
		return nil, err
	}
	sprints, err := s.repos.Sprint.ListByProject(ctx, projectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	return sprints, nil
}

func (s *SprintService) loadSprint(ctx context.Context, sprintId string) (*model.Sprint, error) {
	sprint, err := s.repos.Sprint.Get(ctx, sprintId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.ResourceNotFound("sprint", sprintId)
		}
		return nil, core.Storage(err)
	}
	return sprint, nil
}

// StartSprint activates a planned sprint. Any other active sprint of the
// project is completed first, so at most one runs at a time.
func (s *SprintService) StartSprint(ctx context.Context, user CurrentUser, sprintId string) (*model.Sprint, error) {
	sprint, err := s.loadSprint(ctx, sprintId)
	if err != nil {
		return nil, err
	}
	d, err := s.guard.Require(ctx, user, ProjectResource(sprint.ProjectId), CapChangeStatus)
	if err != nil {
		return nil, err
	}
	if err := CheckActionable(d.Project); err != nil {
		return nil, err
	}
	if sprint.Status != model.SprintPlanning {
		return nil, core.InvalidArgument(fmt.Sprintf("sprint is %s", sprint.Status))
	}

	var started *model.Sprint
	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		closed, err := tx.Sprint.CompleteActive(ctx, sprint.ProjectId, sprintId)
		if err != nil {
			return core.Storage(err)
		}
		fields := map[string]any{}
		if sprint.StartDate == nil {
			fields["start_date"] = s.now()
		}
		if err := tx.Sprint.UpdateStatus(ctx, sprintId, model.SprintActive, fields); err != nil {
			return core.Storage(err)
		}
		if started, err = tx.Sprint.Get(ctx, sprintId); err != nil {
			return core.Storage(err)
		}
		return appendActivity(ctx, tx, sprint.ProjectId, user.UserId, consts.ActivitySprintStarted,
			fmt.Sprintf("sprint %s started", sprint.Name),
			map[string]any{"sprintId": sprintId, "completedSprints": closed})
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Infow("sprint started", "sprint", sprintId, "project", sprint.ProjectId)
	return started, nil
}

func (s *SprintService) CompleteSprint(ctx context.Context, user CurrentUser, sprintId string) (*model.Sprint, error) {
	sprint, err := s.loadSprint(ctx, sprintId)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.Require(ctx, user, ProjectResource(sprint.ProjectId), CapChangeStatus); err != nil {
		return nil, err
	}
	if sprint.Status != model.SprintActive {
		return nil, core.InvalidArgument(fmt.Sprintf("sprint is %s", sprint.Status))
	}

	var completed *model.Sprint
	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		fields := map[string]any{}
		if sprint.EndDate == nil {
			fields["end_date"] = s.now()
		}
		if err := tx.Sprint.UpdateStatus(ctx, sprintId, model.SprintCompleted, fields); err != nil {
			return core.Storage(err)
		}
		var err error
		if completed, err = tx.Sprint.Get(ctx, sprintId); err != nil {
			return core.Storage(err)
		}
		return appendActivity(ctx, tx, sprint.ProjectId, user.UserId, consts.ActivitySprintCompleted,
			fmt.Sprintf("sprint %s completed", sprint.Name), map[string]any{"sprintId": sprintId})
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

type StoryReq struct {
	Title       string            `json:"title"`
	SprintId    string            `json:"sprintId"`
	Status      model.StoryStatus `json:"status"`
	StoryPoints int               `json:"storyPoints"`
}

func validStoryStatus(st model.StoryStatus) bool {
	switch st {
	case model.StoryBacklog, model.StoryTodo, model.StoryInProgress, model.StoryDone:
		return true
	}
	return false
}

func validTaskStatus(st model.TaskStatus) bool {
	switch st {
	case model.TaskTodo, model.TaskInProgress, model.TaskDone:
		return true
	}
	return false
}

func (s *SprintService) CreateStory(ctx context.Context, user CurrentUser, projectId string, req StoryReq) (*model.UserStory, error) {
	d, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapCreateCard)
	if err != nil {
		return nil, err
	}
	if err := CheckActionable(d.Project); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, core.InvalidArgument("story title is required")
	}
	if req.Status == "" {
		req.Status = model.StoryBacklog
	}
	if !validStoryStatus(req.Status) || req.StoryPoints < 0 {
		return nil, core.InvalidArgument("invalid story")
	}
	if req.SprintId != "" {
		sprint, err := s.loadSprint(ctx, req.SprintId)
		if err != nil {
			return nil, err
		}
		if sprint.ProjectId != projectId {
			return nil, core.InvalidArgument("sprint belongs to another project")
		}
	}

	story := &model.UserStory{
		StoryId:     id.GetUUID(),
		ProjectId:   projectId,
		SprintId:    req.SprintId,
		Title:       req.Title,
		Status:      req.Status,
		StoryPoints: req.StoryPoints,
	}
	if err := s.repos.Sprint.CreateStory(ctx, story); err != nil {
		return nil, core.Storage(err)
	}
	return story, nil
}

func (s *SprintService) ListStories(ctx context.Context, user CurrentUser, projectId string) ([]model.UserStory, error) {
	if _, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapView); err != nil {
		return nil, err
	}
	stories, err := s.repos.Sprint.ListStories(ctx, projectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	return stories, nil
}

func (s *SprintService) loadStory(ctx context.Context, storyId string) (*model.UserStory, error) {
	story, err := s.repos.Sprint.GetStory(ctx, storyId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.ResourceNotFound("story", storyId)
		}
		return nil, core.Storage(err)
	}
	return story, nil
}

// AddStoryToSprint pulls an existing story into a sprint of the same
// project. A backlog story becomes todo, other statuses are kept.
func (s *SprintService) AddStoryToSprint(ctx context.Context, user CurrentUser, sprintId, storyId string) (*model.UserStory, error) {
	sprint, err := s.loadSprint(ctx, sprintId)
	if err != nil {
		return nil, err
	}
	story, err := s.loadStory(ctx, storyId)
	if err != nil {
		return nil, err
	}
	d, err := s.guard.Require(ctx, user, ProjectResource(sprint.ProjectId), CapCreateCard)
	if err != nil {
		return nil, err
	}
	if story.ProjectId != sprint.ProjectId {
		return nil, core.InvalidArgument("story and sprint belong to different projects")
	}
	if sprint.Status == model.SprintCompleted {
		return nil, core.InvalidArgument("sprint " + sprint.Name + " is already completed")
	}
	if err := CheckActionable(d.Project); err != nil {
		return nil, err
	}

	fields := map[string]any{"sprint_id": sprint.SprintId}
	if story.Status == model.StoryBacklog {
		fields["status"] = model.StoryTodo
	}
	if err := s.repos.Sprint.UpdateStory(ctx, storyId, fields); err != nil {
		return nil, core.Storage(err)
	}
	story.SprintId = sprint.SprintId
	if st, ok := fields["status"].(model.StoryStatus); ok {
		story.Status = st
	}
	return story, nil
}

// UpdateStoryStatus moves a story; done stories count towards completion.
func (s *SprintService) UpdateStoryStatus(ctx context.Context, user CurrentUser, storyId string, status model.StoryStatus) (*model.UserStory, error) {
	if !validStoryStatus(status) {
		return nil, core.InvalidArgument("unknown story status " + string(status))
	}
	story, err := s.loadStory(ctx, storyId)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.Require(ctx, user, ProjectResource(story.ProjectId), CapCreateCard); err != nil {
		return nil, err
	}
	if err := s.repos.Sprint.UpdateStory(ctx, storyId, map[string]any{"status": status}); err != nil {
		return nil, core.Storage(err)
	}
	story.Status = status
	return story, nil
}

type TaskReq struct {
	Title      string           `json:"title"`
	Status     model.TaskStatus `json:"status"`
	AssigneeId string           `json:"assigneeId"`
}

func (s *SprintService) CreateTask(ctx context.Context, user CurrentUser, storyId string, req TaskReq) (*model.Task, error) {
	story, err := s.loadStory(ctx, storyId)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.Require(ctx, user, ProjectResource(story.ProjectId), CapCreateCard); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, core.InvalidArgument("task title is required")
	}
	if req.Status == "" {
		req.Status = model.TaskTodo
	}
	if !validTaskStatus(req.Status) {
		return nil, core.InvalidArgument("unknown task status " + string(req.Status))
	}

	task := &model.Task{
		TaskId:     id.GetUUID(),
		StoryId:    storyId,
		Title:      req.Title,
		Status:     req.Status,
		AssigneeId: req.AssigneeId,
	}
	if err := s.repos.Sprint.CreateTask(ctx, task); err != nil {
		return nil, core.Storage(err)
	}
	return task, nil
}

func (s *SprintService) ListTasks(ctx context.Context, user CurrentUser, storyId string) ([]model.Task, error) {
	story, err := s.loadStory(ctx, storyId)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.Require(ctx, user, ProjectResource(story.ProjectId), CapView); err != nil {
		return nil, err
	}
	tasks, err := s.repos.Sprint.ListTasks(ctx, storyId)
	if err != nil {
		return nil, core.Storage(err)
	}
	return tasks, nil
}

func (s *SprintService) UpdateTaskStatus(ctx context.Context, user CurrentUser, taskId string, status model.TaskStatus) (*model.Task, error) {
	if !validTaskStatus(status) {
		return nil, core.InvalidArgument("unknown task status " + string(status))
	}
	task, err := s.repos.Sprint.GetTask(ctx, taskId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.ResourceNotFound("task", taskId)
		}
		return nil, core.Storage(err)
	}
	story, err := s.loadStory(ctx, task.StoryId)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.Require(ctx, user, ProjectResource(story.ProjectId), CapCreateCard); err != nil {
		return nil, err
	}
	if err := s.repos.Sprint.UpdateTask(ctx, taskId, map[string]any{"status": status}); err != nil {
		return nil, core.Storage(err)
	}
	task.Status = status
	return task, nil
}
