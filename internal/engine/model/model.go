package model

import (
	"time"

	"github.com/go-arcade/agileboard/pkg/database"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/28 21:55
 * @file: model.go
 * @description: base model
 */

type BaseModel struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func init() {
	database.RegisterModels(
		&User{},
		&Project{},
		&ProjectMember{},
		&Board{},
		&BoardList{},
		&Card{},
		&Comment{},
		&Sprint{},
		&UserStory{},
		&Task{},
		&ProjectMilestone{},
		&ActivityLog{},
		&Notification{},
	)
}
