package repo

import (
	"context"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"gorm.io/gorm"
)

// IActivityRepository is append-only, activity rows are never updated or
// deleted.
type IActivityRepository interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
	ListByProject(ctx context.Context, projectId string, limit int) ([]model.ActivityLog, error)
}

type ActivityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) IActivityRepository {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) Append(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ActivityRepo) ListByProject(ctx context.Context, projectId string, limit int) ([]model.ActivityLog, error) {
	var logs []model.ActivityLog
	q := r.db.WithContext(ctx).Where("project_id = ?", projectId).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}
