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

package model

import "time"

type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

type StoryStatus string

const (
	StoryBacklog    StoryStatus = "backlog"
	StoryTodo       StoryStatus = "todo"
	StoryInProgress StoryStatus = "in_progress"
	StoryDone       StoryStatus = "done"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

type Sprint struct {
	BaseModel
	SprintId  string       `gorm:"column:sprint_id;type:varchar(36);not null;uniqueIndex" json:"sprintId"`
	ProjectId string       `gorm:"column:project_id;type:varchar(36);not null;index" json:"projectId"`
	Name      string       `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Goal      string       `gorm:"column:goal;type:text" json:"goal"`
	Status    SprintStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	StartDate *time.Time   `gorm:"column:start_date" json:"startDate"`
	EndDate   *time.Time   `gorm:"column:end_date" json:"endDate"`
}

// IsOverdue reports an active sprint past its end date.
func (s *Sprint) IsOverdue(now time.Time) bool {
	return s.Status == SprintActive && s.EndDate != nil && now.After(*s.EndDate)
}

type UserStory struct {
	BaseModel
	StoryId     string      `gorm:"column:story_id;type:varchar(36);not null;uniqueIndex" json:"storyId"`
	ProjectId   string      `gorm:"column:project_id;type:varchar(36);not null;index" json:"projectId"`
	SprintId    string      `gorm:"column:sprint_id;type:varchar(36);index" json:"sprintId"`
	Title       string      `gorm:"column:title;type:varchar(500);not null" json:"title"`
	Status      StoryStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	StoryPoints int         `gorm:"column:story_points;not null" json:"storyPoints"`
}

type Task struct {
	BaseModel
	TaskId     string     `gorm:"column:task_id;type:varchar(36);not null;uniqueIndex" json:"taskId"`
	StoryId    string     `gorm:"column:story_id;type:varchar(36);not null;index" json:"storyId"`
	Title      string     `gorm:"column:title;type:varchar(500);not null" json:"title"`
	Status     TaskStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	AssigneeId string     `gorm:"column:assignee_id;type:varchar(36)" json:"assigneeId"`
}
