package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
)

// GroupRepository 小组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	// GetByID 预加载所属课程与学生成员
	GetByID(ctx context.Context, id string) (*model.Group, error)
	GetByName(ctx context.Context, subjectID, name string) (*model.Group, error)
	ListBySubject(ctx context.Context, subjectID string) ([]model.Group, error)
	Delete(ctx context.Context, id string) error
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Where("role = ?", model.RoleStudent).Order("name ASC")
		}).
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) GetByName(ctx context.Context, subjectID, name string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND name = ?", subjectID, name).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) ListBySubject(ctx context.Context, subjectID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Where("role = ?", model.RoleStudent).Order("name ASC")
		}).
		Where("subject_id = ?", subjectID).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

// Delete 删除小组；成员的 group_id 由外键置空，互评等数据级联删除
func (r *groupRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// mysql AutoMigrate 建出的外键不带 SET NULL，这里显式解除
		if err := tx.Model(&model.User{}).
			Where("group_id = ?", id).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ?", id).Delete(&model.Group{}).Error
	})
}
