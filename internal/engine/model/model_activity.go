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

import "gorm.io/datatypes"

// ActivityLog 项目活动日志，只追加
type ActivityLog struct {
	BaseModel
	ProjectId    string         `gorm:"column:project_id;type:varchar(36);not null;index" json:"projectId"`
	UserId       string         `gorm:"column:user_id;type:varchar(36);not null" json:"userId"`
	ActivityType string         `gorm:"column:activity_type;type:varchar(64);not null;index" json:"activityType"`
	Description  string         `gorm:"column:description;type:text" json:"description"`
	ExtraData    datatypes.JSON `gorm:"column:extra_data;type:json" json:"extraData"`
}
