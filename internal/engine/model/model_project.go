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

import (
	"time"

	"github.com/go-arcade/agileboard/pkg/statemachine"
)

// ProjectStatus 项目状态，取值见 statemachine.ProjectStatuses
type ProjectStatus = statemachine.ProjectStatus

// Project 项目表
type Project struct {
	BaseModel
	ProjectId            string        `gorm:"column:project_id;type:varchar(36);not null;uniqueIndex" json:"projectId"`
	Name                 string        `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Description          string        `gorm:"column:description;type:text" json:"description"`
	ClientName           string        `gorm:"column:client_name;type:varchar(200)" json:"clientName"`
	OwnerId              string        `gorm:"column:owner_id;type:varchar(36);index" json:"ownerId"`
	CreatedBy            string        `gorm:"column:created_by;type:varchar(36);index" json:"createdBy"`
	ProjectManagerId     string        `gorm:"column:project_manager_id;type:varchar(36);index" json:"projectManagerId"`
	Status               ProjectStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	Priority             string        `gorm:"column:priority;type:varchar(32)" json:"priority"`
	StartDate            *time.Time    `gorm:"column:start_date" json:"startDate"`
	PlannedEndDate       *time.Time    `gorm:"column:planned_end_date" json:"plannedEndDate"`
	ActualEndDate        *time.Time    `gorm:"column:actual_end_date" json:"actualEndDate"`
	ArchivedAt           *time.Time    `gorm:"column:archived_at" json:"archivedAt"`
	CompletionPercentage float64       `gorm:"column:completion_percentage;not null" json:"completionPercentage"`
	Budget               *float64      `gorm:"column:budget" json:"budget"`
}

// DaysRemaining returns whole days until the planned end, negative when
// overdue, and false without a planned end date.
func (p *Project) DaysRemaining(now time.Time) (int, bool) {
	if p.PlannedEndDate == nil {
		return 0, false
	}
	return int(p.PlannedEndDate.Sub(now).Hours() / 24), true
}

// IsOverdue reports an open project past its planned end date.
func (p *Project) IsOverdue(now time.Time) bool {
	return p.PlannedEndDate != nil && p.Status.IsOpen() && now.After(*p.PlannedEndDate)
}
