package repo

import (
	"context"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"gorm.io/gorm"
)

type IUserRepository interface {
	Get(ctx context.Context, userId string) (*model.User, error)
	GetByExternalId(ctx context.Context, externalId string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByIds(ctx context.Context, userIds []string) ([]model.User, error)
	Create(ctx context.Context, u *model.User) error
	LinkExternalId(ctx context.Context, userId, externalId string) (int64, error)
	UpdateGlobalRole(ctx context.Context, userId string, role model.Role) (int64, error)
	UpdateEmailNotifications(ctx context.Context, userId string, enabled bool) (int64, error)
	ListManagedBy(ctx context.Context, adminId string) ([]model.User, error)
}

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) IUserRepository {
	return &UserRepo{db: db}
}

func (ur *UserRepo) Get(ctx context.Context, userId string) (*model.User, error) {
	var u model.User
	if err := ur.db.WithContext(ctx).Where("user_id = ?", userId).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *UserRepo) GetByExternalId(ctx context.Context, externalId string) (*model.User, error) {
	var u model.User
	if err := ur.db.WithContext(ctx).Where("auth_external_id = ?", externalId).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := ur.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *UserRepo) ListByIds(ctx context.Context, userIds []string) ([]model.User, error) {
	var users []model.User
	if len(userIds) == 0 {
		return users, nil
	}
	err := ur.db.WithContext(ctx).Where("user_id IN ?", userIds).Find(&users).Error
	return users, err
}

func (ur *UserRepo) Create(ctx context.Context, u *model.User) error {
	return ur.db.WithContext(ctx).Create(u).Error
}

// LinkExternalId sets the external id only while it is still unset, the
// external id is immutable once linked.
func (ur *UserRepo) LinkExternalId(ctx context.Context, userId, externalId string) (int64, error) {
	res := ur.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND (auth_external_id IS NULL OR auth_external_id = '')", userId).
		Update("auth_external_id", externalId)
	return res.RowsAffected, res.Error
}

func (ur *UserRepo) UpdateGlobalRole(ctx context.Context, userId string, role model.Role) (int64, error) {
	res := ur.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userId).
		Update("global_role", role)
	return res.RowsAffected, res.Error
}

func (ur *UserRepo) UpdateEmailNotifications(ctx context.Context, userId string, enabled bool) (int64, error) {
	res := ur.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userId).
		Update("email_notifications", enabled)
	return res.RowsAffected, res.Error
}

// ListManagedBy returns the users the admin created plus every user nobody
// created, ordered by email.
func (ur *UserRepo) ListManagedBy(ctx context.Context, adminId string) ([]model.User, error) {
	var users []model.User
	err := ur.db.WithContext(ctx).
		Where("created_by = ? OR created_by = '' OR created_by IS NULL", adminId).
		Order("email ASC").
		Find(&users).Error
	return users, err
}
