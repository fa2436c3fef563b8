package repo

import (
	"context"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"gorm.io/gorm"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/13
 * @file: repo_project_member.go
 * @description: 项目成员仓储
 */

type IProjectMemberRepository interface {
	GetActive(ctx context.Context, projectId, userId string) (*model.ProjectMember, error)
	ListActive(ctx context.Context, projectId string) ([]model.ProjectMemberDetail, error)
	ListActiveUserIds(ctx context.Context, projectId string) ([]string, error)
	ListActiveProjectIds(ctx context.Context, userId string) ([]string, error)
	Upsert(ctx context.Context, projectId, userId string, role model.Role) (*model.ProjectMember, error)
	Deactivate(ctx context.Context, projectId, userId string) (int64, error)
}

type ProjectMemberRepo struct {
	db *gorm.DB
}

func NewProjectMemberRepo(db *gorm.DB) IProjectMemberRepository {
	return &ProjectMemberRepo{db: db}
}

// GetActive 获取项目的活跃成员
func (r *ProjectMemberRepo) GetActive(ctx context.Context, projectId, userId string) (*model.ProjectMember, error) {
	var member model.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectId, userId, true).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListActive 列出项目活跃成员及用户信息
func (r *ProjectMemberRepo) ListActive(ctx context.Context, projectId string) ([]model.ProjectMemberDetail, error) {
	var members []model.ProjectMemberDetail
	err := r.db.WithContext(ctx).
		Table("t_project_member AS m").
		Select("m.*, u.email, u.first_name, u.last_name").
		Joins("JOIN t_user AS u ON u.user_id = m.user_id").
		Where("m.project_id = ? AND m.is_active = ?", projectId, true).
		Order("m.joined_at ASC").
		Scan(&members).Error
	return members, err
}

func (r *ProjectMemberRepo) ListActiveUserIds(ctx context.Context, projectId string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND is_active = ?", projectId, true).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ListActiveProjectIds 获取用户参与的所有项目
func (r *ProjectMemberRepo) ListActiveProjectIds(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("user_id = ? AND is_active = ?", userId, true).
		Pluck("project_id", &ids).Error
	return ids, err
}

// Upsert adds the member or reactivates a departed row with the new role.
// A concurrent insert of the same pair loses on the unique index and is
// resolved by updating the row the winner created.
func (r *ProjectMemberRepo) Upsert(ctx context.Context, projectId, userId string, role model.Role) (*model.ProjectMember, error) {
	now := time.Now()
	reactivate := func() (*model.ProjectMember, error) {
		err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", projectId, userId).
			Updates(map[string]any{
				"role":      role,
				"is_active": true,
				"left_at":   nil,
				"joined_at": now,
			}).Error
		if err != nil {
			return nil, err
		}
		return r.GetActive(ctx, projectId, userId)
	}

	var existing model.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectId, userId).
		First(&existing).Error
	switch {
	case err == nil:
		return reactivate()
	case !IsNotFound(err):
		return nil, err
	}

	member := &model.ProjectMember{
		ProjectId: projectId,
		UserId:    userId,
		Role:      role,
		JoinedAt:  now,
		IsActive:  true,
	}
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if IsDuplicateKey(err) {
			return reactivate()
		}
		return nil, err
	}
	return member, nil
}

// Deactivate 移除项目成员，保留历史行
func (r *ProjectMemberRepo) Deactivate(ctx context.Context, projectId, userId string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectId, userId, true).
		Updates(map[string]any{"is_active": false, "left_at": time.Now()})
	return res.RowsAffected, res.Error
}
