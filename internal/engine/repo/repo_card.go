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
	"database/sql"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"gorm.io/gorm"
)

type ICardRepository interface {
	Get(ctx context.Context, cardId string) (*model.Card, error)
	Create(ctx context.Context, card *model.Card) error
	Update(ctx context.Context, cardId string, fields map[string]any) error
	ListByLists(ctx context.Context, listIds []string) ([]model.Card, error)
	Delete(ctx context.Context, cardId string) (int64, error)
	MaxPosition(ctx context.Context, listId string) (int, error)
	CountAssignedOnBoard(ctx context.Context, boardId, userId string) (int64, error)
	CountAssignedInProject(ctx context.Context, projectId, userId string) (int64, error)
	AssignedProjectIds(ctx context.Context, userId string) ([]string, error)
}

type CardRepo struct {
	db *gorm.DB
}

func NewCardRepo(db *gorm.DB) ICardRepository {
	return &CardRepo{db: db}
}

func (r *CardRepo) Get(ctx context.Context, cardId string) (*model.Card, error) {
	var c model.Card
	if err := r.db.WithContext(ctx).Where("card_id = ?", cardId).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CardRepo) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *CardRepo) Update(ctx context.Context, cardId string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Card{}).Where("card_id = ?", cardId).Updates(fields).Error
}

func (r *CardRepo) ListByLists(ctx context.Context, listIds []string) ([]model.Card, error) {
	var cards []model.Card
	if len(listIds) == 0 {
		return cards, nil
	}
	err := r.db.WithContext(ctx).
		Where("list_id IN ? AND is_active = ?", listIds, true).
		Order("position ASC").
		Find(&cards).Error
	return cards, err
}

func (r *CardRepo) Delete(ctx context.Context, cardId string) (int64, error) {
	res := r.db.WithContext(ctx).Where("card_id = ?", cardId).Delete(&model.Card{})
	return res.RowsAffected, res.Error
}

// MaxPosition returns the highest card position in the list, -1 when empty.
func (r *CardRepo) MaxPosition(ctx context.Context, listId string) (int, error) {
	var pos sql.NullInt64
	err := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("list_id = ?", listId).
		Select("MAX(position)").
		Scan(&pos).Error
	if err != nil || !pos.Valid {
		return -1, err
	}
	return int(pos.Int64), nil
}

// CountAssignedOnBoard counts the active cards assigned to the user on any
// list of the board.
func (r *CardRepo) CountAssignedOnBoard(ctx context.Context, boardId, userId string) (int64, error) {
	return Count(r.db.WithContext(ctx).
		Table("t_card AS c").
		Joins("JOIN t_board_list AS l ON l.list_id = c.list_id").
		Where("l.board_id = ? AND c.assignee_id = ? AND c.is_active = ?", boardId, userId, true))
}

// CountAssignedInProject counts the active cards assigned to the user on
// any board of the project.
func (r *CardRepo) CountAssignedInProject(ctx context.Context, projectId, userId string) (int64, error) {
	return Count(r.db.WithContext(ctx).
		Table("t_card AS c").
		Joins("JOIN t_board_list AS l ON l.list_id = c.list_id").
		Joins("JOIN t_board AS b ON b.board_id = l.board_id").
		Where("b.project_id = ? AND c.assignee_id = ? AND c.is_active = ?", projectId, userId, true))
}

func (r *CardRepo) AssignedProjectIds(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("t_card AS c").
		Joins("JOIN t_board_list AS l ON l.list_id = c.list_id").
		Joins("JOIN t_board AS b ON b.board_id = l.board_id").
		Where("c.assignee_id = ? AND c.is_active = ?", userId, true).
		Distinct().
		Pluck("b.project_id", &ids).Error
	return ids, err
}
