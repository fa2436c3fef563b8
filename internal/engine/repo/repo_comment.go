package repo

import (
	"context"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"gorm.io/gorm"
)

type ICommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	ListByCard(ctx context.Context, cardId string) ([]model.Comment, error)
	DeleteByCard(ctx context.Context, cardId string) error
}

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) ICommentRepository {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CommentRepo) ListByCard(ctx context.Context, cardId string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).Where("card_id = ?", cardId).Order("id ASC").Find(&comments).Error
	return comments, err
}

func (r *CommentRepo) DeleteByCard(ctx context.Context, cardId string) error {
	return r.db.WithContext(ctx).Where("card_id = ?", cardId).Delete(&model.Comment{}).Error
}
