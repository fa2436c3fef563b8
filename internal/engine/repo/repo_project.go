package repo

import (
	"context"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/pkg/database"
	"gorm.io/gorm"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/13
 * @file: repo_project.go
 * @description: 项目仓储
 */

type IProjectRepository interface {
	Get(ctx context.Context, projectId string) (*model.Project, error)
	Create(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, projectId string, fields map[string]any) error
	UpdateStatus(ctx context.Context, projectId string, from, to model.ProjectStatus, fields map[string]any) (int64, error)
	List(ctx context.Context, statuses ...model.ProjectStatus) ([]model.Project, error)
	ListByIds(ctx context.Context, projectIds []string, statuses ...model.ProjectStatus) ([]model.Project, error)
	SharesAdminPortfolio(ctx context.Context, userId, projectId string) (bool, error)
	Delete(ctx context.Context, projectId string) (int64, error)
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) IProjectRepository {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) Get(ctx context.Context, projectId string) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectId).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProjectRepo) Update(ctx context.Context, projectId string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Project{}).
		Where("project_id = ?", projectId).
		Updates(fields).Error
}

// UpdateStatus moves the project from one status to another only if it is
// still in the expected status. Zero affected rows means another writer
// changed it first.
func (r *ProjectRepo) UpdateStatus(ctx context.Context, projectId string, from, to model.ProjectStatus, fields map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("project_id = ? AND status = ?", projectId, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *ProjectRepo) List(ctx context.Context, statuses ...model.ProjectStatus) ([]model.Project, error) {
	var projects []model.Project
	q := database.ReadDB(r.db.WithContext(ctx))
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("id DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepo) ListByIds(ctx context.Context, projectIds []string, statuses ...model.ProjectStatus) ([]model.Project, error) {
	var projects []model.Project
	if len(projectIds) == 0 {
		return projects, nil
	}
	q := database.ReadDB(r.db.WithContext(ctx)).Where("project_id IN ?", projectIds)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("id DESC").Find(&projects).Error
	return projects, err
}

// SharesAdminPortfolio reports whether the project was created by an admin
// and the user is an active product owner on another project created by
// that same admin.
func (r *ProjectRepo) SharesAdminPortfolio(ctx context.Context, userId, projectId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("t_project AS p").
		Joins("JOIN t_user AS creator ON creator.user_id = p.created_by AND creator.global_role = ?", model.RoleAdmin).
		Joins("JOIN t_project AS other ON other.created_by = p.created_by AND other.project_id <> p.project_id").
		Joins("JOIN t_project_member AS m ON m.project_id = other.project_id").
		Where("p.project_id = ? AND m.user_id = ? AND m.is_active = ? AND m.role = ?",
			projectId, userId, true, model.RoleProductOwner).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the project together with its members, boards, lists,
// cards, comments, sprints, stories, tasks and milestones. Activity logs and
// notifications are kept. Callers run it inside a transaction.
func (r *ProjectRepo) Delete(ctx context.Context, projectId string) (int64, error) {
	db := r.db.WithContext(ctx)
	boards := db.Model(&model.Board{}).Select("board_id").Where("project_id = ?", projectId)
	lists := db.Model(&model.BoardList{}).Select("list_id").Where("board_id IN (?)", boards)
	cards := db.Model(&model.Card{}).Select("card_id").Where("list_id IN (?)", lists)
	stories := db.Model(&model.UserStory{}).Select("story_id").Where("project_id = ?", projectId)

	// children first, the subqueries above read the parent rows
	steps := []struct {
		value any
		query string
		arg   any
	}{
		{&model.Comment{}, "card_id IN (?)", cards},
		{&model.Card{}, "list_id IN (?)", lists},
		{&model.BoardList{}, "board_id IN (?)", boards},
		{&model.Board{}, "project_id = ?", projectId},
		{&model.Task{}, "story_id IN (?)", stories},
		{&model.UserStory{}, "project_id = ?", projectId},
		{&model.Sprint{}, "project_id = ?", projectId},
		{&model.ProjectMilestone{}, "project_id = ?", projectId},
		{&model.ProjectMember{}, "project_id = ?", projectId},
	}
	for _, step := range steps {
		if err := db.Where(step.query, step.arg).Delete(step.value).Error; err != nil {
			return 0, err
		}
	}
	res := db.Where("project_id = ?", projectId).Delete(&model.Project{})
	return res.RowsAffected, res.Error
}
