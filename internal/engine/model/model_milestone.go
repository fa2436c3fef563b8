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

type ProjectMilestone struct {
	BaseModel
	MilestoneId string     `gorm:"column:milestone_id;type:varchar(36);not null;uniqueIndex" json:"milestoneId"`
	ProjectId   string     `gorm:"column:project_id;type:varchar(36);not null;index" json:"projectId"`
	Name        string     `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	DueDate     time.Time  `gorm:"column:due_date;not null" json:"dueDate"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt"`
	IsCompleted bool       `gorm:"column:is_completed;not null" json:"isCompleted"`
}

func (m *ProjectMilestone) IsOverdue(now time.Time) bool {
	return !m.IsCompleted && now.After(m.DueDate)
}
