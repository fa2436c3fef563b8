package model

import "time"

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/13
 * @file: model_project_member.go
 * @description: 项目成员模型，(project_id, user_id) 唯一，重复加入时重新激活
 */

type ProjectMember struct {
	BaseModel
	ProjectId string     `gorm:"column:project_id;type:varchar(36);not null;uniqueIndex:idx_project_user" json:"projectId"`
	UserId    string     `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_project_user;index:idx_member_user" json:"userId"`
	Role      Role       `gorm:"column:role;type:varchar(32);not null" json:"role"`
	JoinedAt  time.Time  `gorm:"column:joined_at" json:"joinedAt"`
	LeftAt    *time.Time `gorm:"column:left_at" json:"leftAt"`
	IsActive  bool       `gorm:"column:is_active;not null;index" json:"isActive"`
}

// ProjectMemberDetail 成员及其用户信息
type ProjectMemberDetail struct {
	ProjectMember
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
