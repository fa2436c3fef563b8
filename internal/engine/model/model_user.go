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

import "strings"

// User 用户表，首次通过身份提供方校验后懒创建
type User struct {
	BaseModel
	UserId             string  `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex" json:"userId"`
	AuthExternalId     *string `gorm:"column:auth_external_id;type:varchar(128);uniqueIndex" json:"authExternalId,omitempty"` // 身份提供方用户ID，关联后不可变
	Email              string  `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	FirstName          string  `gorm:"column:first_name;type:varchar(100)" json:"firstName"`
	LastName           string  `gorm:"column:last_name;type:varchar(100)" json:"lastName"`
	GlobalRole         Role    `gorm:"column:global_role;type:varchar(32);not null" json:"globalRole"`
	IsActive           bool    `gorm:"column:is_active;not null" json:"isActive"`
	EmailNotifications bool    `gorm:"column:email_notifications;not null;default:true" json:"emailNotifications"` // 关闭后仅保留站内通知
	CreatedBy          string  `gorm:"column:created_by;type:varchar(36);index" json:"createdBy,omitempty"`        // 管理员预建用户时记录创建人
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) IsAdmin() bool {
	return u.GlobalRole == RoleAdmin
}

// ExternalID returns the linked identity id or "".
func (u *User) ExternalID() string {
	if u.AuthExternalId == nil {
		return ""
	}
	return *u.AuthExternalId
}
