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

// BoardTemplate 看板模板
type BoardTemplate string

const (
	BoardTemplateKanban BoardTemplate = "kanban"
	BoardTemplateScrum  BoardTemplate = "scrum"
)

// DefaultLists returns the list names created with a new board.
func (t BoardTemplate) DefaultLists() []string {
	switch t {
	case BoardTemplateScrum:
		return []string{"Backlog", "Sprint", "In Progress", "Review", "Done"}
	default:
		return []string{"To Do", "In Progress", "Done"}
	}
}

func (t BoardTemplate) IsValid() bool {
	return t == BoardTemplateKanban || t == BoardTemplateScrum
}

type Board struct {
	BaseModel
	BoardId     string        `gorm:"column:board_id;type:varchar(36);not null;uniqueIndex" json:"boardId"`
	ProjectId   string        `gorm:"column:project_id;type:varchar(36);not null;index" json:"projectId"`
	Name        string        `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Description string        `gorm:"column:description;type:text" json:"description"`
	Template    BoardTemplate `gorm:"column:template;type:varchar(32);not null" json:"template"`
	CreatedBy   string        `gorm:"column:created_by;type:varchar(36)" json:"createdBy"`

	Lists []BoardList `gorm:"-" json:"lists,omitempty"`
}

type BoardList struct {
	BaseModel
	ListId   string `gorm:"column:list_id;type:varchar(36);not null;uniqueIndex" json:"listId"`
	BoardId  string `gorm:"column:board_id;type:varchar(36);not null;index" json:"boardId"`
	Name     string `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Position int    `gorm:"column:position;not null" json:"position"`

	Cards []Card `gorm:"-" json:"cards,omitempty"`
}

type Card struct {
	BaseModel
	CardId      string     `gorm:"column:card_id;type:varchar(36);not null;uniqueIndex" json:"cardId"`
	ListId      string     `gorm:"column:list_id;type:varchar(36);not null;index" json:"listId"`
	Title       string     `gorm:"column:title;type:varchar(500);not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Position    int        `gorm:"column:position;not null" json:"position"`
	DueDate     *time.Time `gorm:"column:due_date" json:"dueDate"`
	AssigneeId  string     `gorm:"column:assignee_id;type:varchar(36);index" json:"assigneeId"`
	CoverColor  string     `gorm:"column:cover_color;type:varchar(32)" json:"coverColor"`
	IsActive    bool       `gorm:"column:is_active;not null" json:"isActive"`
}

type Comment struct {
	BaseModel
	CommentId string `gorm:"column:comment_id;type:varchar(36);not null;uniqueIndex" json:"commentId"`
	CardId    string `gorm:"column:card_id;type:varchar(36);not null;index" json:"cardId"`
	UserId    string `gorm:"column:user_id;type:varchar(36);not null" json:"userId"`
	Content   string `gorm:"column:content;type:text;not null" json:"content"`
}
