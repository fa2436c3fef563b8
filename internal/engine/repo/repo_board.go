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

type IBoardRepository interface {
	Get(ctx context.Context, boardId string) (*model.Board, error)
	Create(ctx context.Context, board *model.Board, lists []model.BoardList) error
	ListByProject(ctx context.Context, projectId string) ([]model.Board, error)
	GetList(ctx context.Context, listId string) (*model.BoardList, error)
	ListLists(ctx context.Context, boardId string) ([]model.BoardList, error)
	CreateList(ctx context.Context, list *model.BoardList) error
	MaxListPosition(ctx context.Context, boardId string) (int, error)
}

type BoardRepo struct {
	db *gorm.DB
}

func NewBoardRepo(db *gorm.DB) IBoardRepository {
	return &BoardRepo{db: db}
}

func (r *BoardRepo) Get(ctx context.Context, boardId string) (*model.Board, error) {
	var b model.Board
	if err := r.db.WithContext(ctx).Where("board_id = ?", boardId).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts the board and its initial lists.
func (r *BoardRepo) Create(ctx context.Context, board *model.Board, lists []model.BoardList) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(board).Error; err != nil {
		return err
	}
	if len(lists) == 0 {
		return nil
	}
	return db.Create(&lists).Error
}

func (r *BoardRepo) ListByProject(ctx context.Context, projectId string) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).Where("project_id = ?", projectId).Order("id ASC").Find(&boards).Error
	return boards, err
}

func (r *BoardRepo) GetList(ctx context.Context, listId string) (*model.BoardList, error) {
	var l model.BoardList
	if err := r.db.WithContext(ctx).Where("list_id = ?", listId).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *BoardRepo) ListLists(ctx context.Context, boardId string) ([]model.BoardList, error) {
	var lists []model.BoardList
	err := r.db.WithContext(ctx).Where("board_id = ?", boardId).Order("position ASC").Find(&lists).Error
	return lists, err
}

func (r *BoardRepo) CreateList(ctx context.Context, list *model.BoardList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

// MaxListPosition returns the highest list position on the board, -1 when
// the board has no lists.
func (r *BoardRepo) MaxListPosition(ctx context.Context, boardId string) (int, error) {
	var pos sql.NullInt64
	err := r.db.WithContext(ctx).Model(&model.BoardList{}).
		Where("board_id = ?", boardId).
		Select("MAX(position)").
		Scan(&pos).Error
	if err != nil || !pos.Valid {
		return -1, err
	}
	return int(pos.Int64), nil
}
