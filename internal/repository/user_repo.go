package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByLogin 按邮箱或学号查找
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	// ListStudents groupID 为空时列出全部学生
	ListStudents(ctx context.Context, groupID string) ([]model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	// SetGroupMembers 将小组成员整体替换为 studentIDs
	SetGroupMembers(ctx context.Context, groupID string, studentIDs []string) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR student_number = ?", login, login).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&model.User{}).Error
}

func (r *userRepo) ListStudents(ctx context.Context, groupID string) ([]model.User, error) {
	var users []model.User
	db := r.db.WithContext(ctx).Where("role = ?", model.RoleStudent)
	if groupID != "" {
		db = db.Where("group_id = ?", groupID)
	}
	err := db.Order("name ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (r *userRepo) SetGroupMembers(ctx context.Context, groupID string, studentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		detach := tx.Model(&model.User{}).Where("group_id = ?", groupID)
		if len(studentIDs) > 0 {
			detach = detach.Where("user_id NOT IN ?", studentIDs)
		}
		if err := detach.Update("group_id", nil).Error; err != nil {
			return err
		}
		if len(studentIDs) == 0 {
			return nil
		}
		return tx.Model(&model.User{}).
			Where("user_id IN ?", studentIDs).
			Update("group_id", groupID).Error
	})
}
