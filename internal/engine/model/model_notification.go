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

// Notification 站内通知，只能由所属用户标记已读或删除
type Notification struct {
	BaseModel
	NotificationId string         `gorm:"column:notification_id;type:varchar(36);not null;uniqueIndex" json:"notificationId"`
	UserId         string         `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`
	Content        string         `gorm:"column:content;type:text;not null" json:"content"`
	Type           string         `gorm:"column:type;type:varchar(64);not null" json:"type"`
	EntityId       string         `gorm:"column:entity_id;type:varchar(36)" json:"entityId"`
	Data           datatypes.JSON `gorm:"column:data;type:json" json:"data"`
	Read           bool           `gorm:"column:is_read;not null;index" json:"read"`
}
