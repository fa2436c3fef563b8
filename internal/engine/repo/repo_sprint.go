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

package repo

import (
	"context"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"gorm.io/gorm"
)

// WorkStats holds the story and task counts completion is computed from.
type WorkStats struct {
	TotalStories     int64 `json:"totalStories"`
	CompletedStories int64 `json:"completedStories"`
	TotalTasks       int64 `json:"totalTasks"`
	CompletedTasks   int64 `json:"completedTasks"`
	TotalPoints      int64 `json:"totalPoints"`
	CompletedPoints  int64 `json:"completedPoints"`
}

type ISprintRepository interface {
	Get(ctx context.Context, sprintId string) (*model.Sprint, error)
	Create(ctx context.Context, s *model.Sprint) error
	ListByProject(ctx context.Context, projectId string) ([]model.Sprint, error)
	CountActive(ctx context.Context, projectId string) (int64, error)
	CountOverdue(ctx context.Context, projectId string, now time.Time) (int64, error)
	UpdateStatus(ctx context.Context, sprintId string, status model.SprintStatus, fields map[string]any) error
	CompleteActive(ctx context.Context, projectId, exceptSprintId string) (int64, error)
	CreateStory(ctx context.Context, story *model.UserStory) error
	GetStory(ctx context.Context, storyId string) (*model.UserStory, error)
	ListStories(ctx context.Context, projectId string) ([]model.UserStory, error)
	UpdateStory(ctx context.Context, storyId string, fields map[string]any) error
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, taskId string) (*model.Task, error)
	ListTasks(ctx context.Context, storyId string) ([]model.Task, error)
	UpdateTask(ctx context.Context, taskId string, fields map[string]any) error
	WorkStats(ctx context.Context, projectId string) (WorkStats, error)
}

type SprintRepo struct {
	db *gorm.DB
}

func NewSprintRepo(db *gorm.DB) ISprintRepository {
	return &SprintRepo{db: db}
}

func (r *SprintRepo) Get(ctx context.Context, sprintId string) (*model.Sprint, error) {
	var s model.Sprint
	if err := r.db.WithContext(ctx).Where("sprint_id = ?", sprintId).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SprintRepo) Create(ctx context.Context, s *model.Sprint) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SprintRepo) ListByProject(ctx context.Context, projectId string) ([]model.Sprint, error) {
	var sprints []model.Sprint
	err := r.db.WithContext(ctx).Where("project_id = ?", projectId).Order("id ASC").Find(&sprints).Error
	return sprints, err
}

func (r *SprintRepo) CountActive(ctx context.Context, projectId string) (int64, error) {
	return Count(r.db.WithContext(ctx).Model(&model.Sprint{}).
		Where("project_id = ? AND status = ?", projectId, model.SprintActive))
}

func (r *SprintRepo) CountOverdue(ctx context.Context, projectId string, now time.Time) (int64, error) {
	return Count(r.db.WithContext(ctx).Model(&model.Sprint{}).
		Where("project_id = ? AND status = ? AND end_date IS NOT NULL AND end_date < ?", projectId, model.SprintActive, now))
}

func (r *SprintRepo) UpdateStatus(ctx context.Context, sprintId string, status model.SprintStatus, fields map[string]any) error {
	updates := map[string]any{"status": status}
	for k, v := range fields {
		updates[k] = v
	}
	return r.db.WithContext(ctx).Model(&model.Sprint{}).Where("sprint_id = ?", sprintId).Updates(updates).Error
}

// CompleteActive closes every active sprint of the project except one.
func (r *SprintRepo) CompleteActive(ctx context.Context, projectId, exceptSprintId string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Sprint{}).
		Where("project_id = ? AND status = ? AND sprint_id <> ?", projectId, model.SprintActive, exceptSprintId).
		Update("status", model.SprintCompleted)
	return res.RowsAffected, res.Error
}

func (r *SprintRepo) CreateStory(ctx context.Context, story *model.UserStory) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *SprintRepo) GetStory(ctx context.Context, storyId string) (*model.UserStory, error) {
	var story model.UserStory
	if err := r.db.WithContext(ctx).Where("story_id = ?", storyId).First(&story).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *SprintRepo) ListStories(ctx context.Context, projectId string) ([]model.UserStory, error) {
	var stories []model.UserStory
	err := r.db.WithContext(ctx).Where("project_id = ?", projectId).Order("id ASC").Find(&stories).Error
	return stories, err
}

func (r *SprintRepo) UpdateStory(ctx context.Context, storyId string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.UserStory{}).Where("story_id = ?", storyId).Updates(fields).Error
}

func (r *SprintRepo) CreateTask(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *SprintRepo) GetTask(ctx context.Context, taskId string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *SprintRepo) ListTasks(ctx context.Context, storyId string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Where("story_id = ?", storyId).Order("id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *SprintRepo) UpdateTask(ctx context.Context, taskId string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).Where("task_id = ?", taskId).Updates(fields).Error
}

// WorkStats counts the project's stories, tasks and story points, split by
// done and total.
func (r *SprintRepo) WorkStats(ctx context.Context, projectId string) (WorkStats, error) {
	var stats WorkStats
	db := r.db.WithContext(ctx)

	var stories struct {
		Total           int64
		Completed       int64
		TotalPoints     int64
		CompletedPoints int64
	}
	err := db.Model(&model.UserStory{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
			"COALESCE(SUM(story_points), 0) AS total_points, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN story_points ELSE 0 END), 0) AS completed_points",
			model.StoryDone, model.StoryDone).
		Where("project_id = ?", projectId).
		Scan(&stories).Error
	if err != nil {
		return stats, err
	}

	var tasks struct {
		Total     int64
		Completed int64
	}
	err = db.Table("t_task AS t").
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN t.status = ? THEN 1 ELSE 0 END), 0) AS completed", model.TaskDone).
		Joins("JOIN t_user_story AS s ON s.story_id = t.story_id").
		Where("s.project_id = ?", projectId).
		Scan(&tasks).Error
	if err != nil {
		return stats, err
	}

	stats.TotalStories = stories.Total
	stats.CompletedStories = stories.Completed
	stats.TotalPoints = stories.TotalPoints
	stats.CompletedPoints = stories.CompletedPoints
	stats.TotalTasks = tasks.Total
	stats.CompletedTasks = tasks.Completed
	return stats, nil
}
