package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "github.com/Skyler-Tan/G17--Mini-IT-project/pkg/errors"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
)

// PeerReviewRepository 互评记录数据访问接口
type PeerReviewRepository interface {
	ListByGroup(ctx context.Context, groupID string) ([]model.PeerReview, error)
	ListByReviewer(ctx context.Context, reviewerID string) ([]model.PeerReview, error)
	// DeleteByReviewer 删除该学生提交过的全部互评
	DeleteByReviewer(ctx context.Context, reviewerID string) error
	BatchCreate(ctx context.Context, reviews []model.PeerReview) error
}

type peerReviewRepo struct {
	db *gorm.DB
}

// NewPeerReviewRepo 创建 PeerReviewRepository 实例
func NewPeerReviewRepo(db *gorm.DB) PeerReviewRepository {
	return &peerReviewRepo{db: db}
}

func (r *peerReviewRepo) ListByGroup(ctx context.Context, groupID string) ([]model.PeerReview, error) {
	var reviews []model.PeerReview
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *peerReviewRepo) ListByReviewer(ctx context.Context, reviewerID string) ([]model.PeerReview, error) {
	var reviews []model.PeerReview
	err := r.db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Find(&reviews).Error
	return reviews, err
}

func (r *peerReviewRepo) DeleteByReviewer(ctx context.Context, reviewerID string) error {
	return r.db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Delete(&model.PeerReview{}).Error
}

func (r *peerReviewRepo) BatchCreate(ctx context.Context, reviews []model.PeerReview) error {
	if len(reviews) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&reviews).Error
}

// ── SelfAssessment ──

// SelfAssessmentRepository 自评数据访问接口
type SelfAssessmentRepository interface {
	GetByStudent(ctx context.Context, studentID string) (*model.SelfAssessment, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.SelfAssessment, error)
	DeleteByStudent(ctx context.Context, studentID string) error
	Create(ctx context.Context, a *model.SelfAssessment) error
}

type selfAssessmentRepo struct {
	db *gorm.DB
}

// NewSelfAssessmentRepo 创建 SelfAssessmentRepository 实例
func NewSelfAssessmentRepo(db *gorm.DB) SelfAssessmentRepository {
	return &selfAssessmentRepo{db: db}
}

func (r *selfAssessmentRepo) GetByStudent(ctx context.Context, studentID string) (*model.SelfAssessment, error) {
	var a model.SelfAssessment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *selfAssessmentRepo) ListByGroup(ctx context.Context, groupID string) ([]model.SelfAssessment, error) {
	var list []model.SelfAssessment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *selfAssessmentRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&model.SelfAssessment{}).Error
}

func (r *selfAssessmentRepo) Create(ctx context.Context, a *model.SelfAssessment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// ── AnonymousComment ──

// AnonymousCommentRepository 匿名评语数据访问接口
type AnonymousCommentRepository interface {
	Create(ctx context.Context, c *model.AnonymousComment) error
	ListByGroup(ctx context.Context, groupID string) ([]model.AnonymousComment, error)
}

type anonymousCommentRepo struct {
	db *gorm.DB
}

// NewAnonymousCommentRepo 创建 AnonymousCommentRepository 实例
func NewAnonymousCommentRepo(db *gorm.DB) AnonymousCommentRepository {
	return &anonymousCommentRepo{db: db}
}

func (r *anonymousCommentRepo) Create(ctx context.Context, c *model.AnonymousComment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *anonymousCommentRepo) ListByGroup(ctx context.Context, groupID string) ([]model.AnonymousComment, error) {
	var list []model.AnonymousComment
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// ── LecturerMark ──

// LecturerMarkRepository 教师评分数据访问接口
type LecturerMarkRepository interface {
	GetByStudent(ctx context.Context, studentID string) (*model.LecturerMark, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.LecturerMark, error)
	Create(ctx context.Context, m *model.LecturerMark) error
	// Update 乐观锁更新，版本不匹配时返回 ErrOptimisticLock
	Update(ctx context.Context, m *model.LecturerMark) error
}

type lecturerMarkRepo struct {
	db *gorm.DB
}

// NewLecturerMarkRepo 创建 LecturerMarkRepository 实例
func NewLecturerMarkRepo(db *gorm.DB) LecturerMarkRepository {
	return &lecturerMarkRepo{db: db}
}

func (r *lecturerMarkRepo) GetByStudent(ctx context.Context, studentID string) (*model.LecturerMark, error) {
	var m model.LecturerMark
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *lecturerMarkRepo) ListByGroup(ctx context.Context, groupID string) ([]model.LecturerMark, error) {
	var list []model.LecturerMark
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Find(&list).Error
	return list, err
}

func (r *lecturerMarkRepo) Create(ctx context.Context, m *model.LecturerMark) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *lecturerMarkRepo) Update(ctx context.Context, m *model.LecturerMark) error {
	oldVersion := m.Version
	result := r.db.WithContext(ctx).
		Model(&model.LecturerMark{}).
		Where("mark_id = ? AND version = ?", m.MarkID, oldVersion).
		Updates(map[string]interface{}{
			"group_id":   m.GroupID,
			"group_mark": m.GroupMark,
			"rating":     m.Rating,
			"updated_by": m.UpdatedBy,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	m.Version = oldVersion + 1
	return nil
}
