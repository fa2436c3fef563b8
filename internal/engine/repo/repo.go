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
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Repositories 统一管理所有 repository
type Repositories struct {
	db *gorm.DB

	User          IUserRepository
	Project       IProjectRepository
	ProjectMember IProjectMemberRepository
	Board         IBoardRepository
	Card          ICardRepository
	Comment       ICommentRepository
	Sprint        ISprintRepository
	Milestone     IMilestoneRepository
	Activity      IActivityRepository
	Notification  INotificationRepository
}

// NewRepositories 初始化所有 repository
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		User:          NewUserRepo(db),
		Project:       NewProjectRepo(db),
		ProjectMember: NewProjectMemberRepo(db),
		Board:         NewBoardRepo(db),
		Card:          NewCardRepo(db),
		Comment:       NewCommentRepo(db),
		Sprint:        NewSprintRepo(db),
		Milestone:     NewMilestoneRepo(db),
		Activity:      NewActivityRepo(db),
		Notification:  NewNotificationRepo(db),
	}
}

// DB returns the handle the repositories were built on.
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn with repositories bound to one transaction. Any
// error returned by fn rolls the whole unit back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

func Count(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IsNotFound reports a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports a unique constraint violation from either the
// translated gorm error or the raw MySQL error 1062.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
