package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User             UserRepository
	Subject          SubjectRepository
	Setting          ReviewSettingRepository
	Group            GroupRepository
	Review           PeerReviewRepository
	SelfAssessment   SelfAssessmentRepository
	AnonymousComment AnonymousCommentRepository
	Mark             LecturerMarkRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:               db,
		User:             NewUserRepo(db),
		Subject:          NewSubjectRepo(db),
		Setting:          NewReviewSettingRepo(db),
		Group:            NewGroupRepo(db),
		Review:           NewPeerReviewRepo(db),
		SelfAssessment:   NewSelfAssessmentRepo(db),
		AnonymousComment: NewAnonymousCommentRepo(db),
		Mark:             NewLecturerMarkRepo(db),
	}
}

// BeginTx 开启事务
// 未持有数据库连接时（单元测试中的 mock 聚合）返回 nil，调用方需判空
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
