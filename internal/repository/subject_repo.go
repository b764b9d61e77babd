package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
)

// SubjectRepository 课程数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	GetByName(ctx context.Context, name string) (*model.Subject, error)
	// List lecturerID 为空时列出全部课程
	List(ctx context.Context, lecturerID string) ([]model.Subject, error)
	Delete(ctx context.Context, id string) error
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Preload("Lecturer").
		Preload("Setting").
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) GetByName(ctx context.Context, name string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) List(ctx context.Context, lecturerID string) ([]model.Subject, error) {
	var subjects []model.Subject
	db := r.db.WithContext(ctx).Preload("Lecturer").Preload("Setting")
	if lecturerID != "" {
		db = db.Where("lecturer_id = ?", lecturerID)
	}
	err := db.Order("name ASC").Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		Delete(&model.Subject{}).Error
}

// ── ReviewSetting ──

// ReviewSettingRepository 互评设置数据访问接口
type ReviewSettingRepository interface {
	Get(ctx context.Context, subjectID string) (*model.ReviewSetting, error)
	Upsert(ctx context.Context, setting *model.ReviewSetting) error
}

type reviewSettingRepo struct {
	db *gorm.DB
}

// NewReviewSettingRepo 创建 ReviewSettingRepository 实例
func NewReviewSettingRepo(db *gorm.DB) ReviewSettingRepository {
	return &reviewSettingRepo{db: db}
}

func (r *reviewSettingRepo) Get(ctx context.Context, subjectID string) (*model.ReviewSetting, error) {
	var setting model.ReviewSetting
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *reviewSettingRepo) Upsert(ctx context.Context, setting *model.ReviewSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"criteria", "deadline", "updated_at", "updated_by"}),
		}).
		Create(setting).Error
}
