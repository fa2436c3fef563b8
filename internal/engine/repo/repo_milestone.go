package repo

import (
	"context"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"gorm.io/gorm"
)

type IMilestoneRepository interface {
	Get(ctx context.Context, milestoneId string) (*model.ProjectMilestone, error)
	Create(ctx context.Context, m *model.ProjectMilestone) error
	Update(ctx context.Context, milestoneId string, fields map[string]any) error
	ListByProject(ctx context.Context, projectId string) ([]model.ProjectMilestone, error)
	ListOverdue(ctx context.Context, projectId string, now time.Time) ([]model.ProjectMilestone, error)
}

type MilestoneRepo struct {
	db *gorm.DB
}

func NewMilestoneRepo(db *gorm.DB) IMilestoneRepository {
	return &MilestoneRepo{db: db}
}

func (r *MilestoneRepo) Get(ctx context.Context, milestoneId string) (*model.ProjectMilestone, error) {
	var m model.ProjectMilestone
	if err := r.db.WithContext(ctx).Where("milestone_id = ?", milestoneId).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MilestoneRepo) Create(ctx context.Context, m *model.ProjectMilestone) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MilestoneRepo) Update(ctx context.Context, milestoneId string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.ProjectMilestone{}).
		Where("milestone_id = ?", milestoneId).
		Updates(fields).Error
}

func (r *MilestoneRepo) ListByProject(ctx context.Context, projectId string) ([]model.ProjectMilestone, error) {
	var ms []model.ProjectMilestone
	err := r.db.WithContext(ctx).Where("project_id = ?", projectId).Order("due_date ASC").Find(&ms).Error
	return ms, err
}

func (r *MilestoneRepo) ListOverdue(ctx context.Context, projectId string, now time.Time) ([]model.ProjectMilestone, error) {
	var ms []model.ProjectMilestone
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_completed = ? AND due_date < ?", projectId, false, now).
		Order("due_date ASC").
		Find(&ms).Error
	return ms, err
}
