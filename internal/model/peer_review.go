package model

import (
	"time"

	"gorm.io/gorm"
)

// PeerReview 互评记录表：对应 peer_reviews
// 同一 (reviewer, reviewee) 至多一条；重新提交时先删除再插入
type PeerReview struct {
	ReviewID   string    `gorm:"type:varchar(36);primaryKey"                          json:"review_id"`
	GroupID    string    `gorm:"type:varchar(36);not null;index"                      json:"group_id"`
	ReviewerID string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_peer_reviews_pair" json:"reviewer_id"`
	RevieweeID string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_peer_reviews_pair" json:"reviewee_id"`
	Score      int       `gorm:"type:smallint;not null"                               json:"score"`
	Comment    string    `gorm:"type:text;not null"                                   json:"comment"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                   json:"created_at"`

	// 关联
	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID;constraint:OnDelete:CASCADE" json:"reviewer,omitempty"`
	Reviewee *User `gorm:"foreignKey:RevieweeID;references:UserID;constraint:OnDelete:CASCADE" json:"reviewee,omitempty"`
}

func (PeerReview) TableName() string { return "peer_reviews" }

func (r *PeerReview) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ReviewID)
	return nil
}

// SelfAssessment 自评表：对应 self_assessments（每个学生一条）
type SelfAssessment struct {
	AssessmentID string    `gorm:"type:varchar(36);primaryKey"            json:"assessment_id"`
	StudentID    string    `gorm:"type:varchar(36);not null;uniqueIndex"  json:"student_id"`
	GroupID      string    `gorm:"type:varchar(36);not null;index"        json:"group_id"`
	Summary      string    `gorm:"type:text;not null"                     json:"summary"`
	Challenges   string    `gorm:"type:text;not null"                     json:"challenges"`
	Different    string    `gorm:"type:text;not null"                     json:"different"`
	Role         string    `gorm:"type:text;not null"                     json:"role"`
	Feedback     *string   `gorm:"type:text"                              json:"feedback,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"     json:"created_at"`

	Student *User `gorm:"foreignKey:StudentID;references:UserID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

func (SelfAssessment) TableName() string { return "self_assessments" }

func (a *SelfAssessment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AssessmentID)
	return nil
}

// AnonymousComment 匿名评语表：对应 anonymous_comments，不记录作者
type AnonymousComment struct {
	CommentID string    `gorm:"type:varchar(36);primaryKey"        json:"comment_id"`
	GroupID   string    `gorm:"type:varchar(36);not null;index"    json:"group_id"`
	Content   string    `gorm:"type:text;not null"                 json:"content"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AnonymousComment) TableName() string { return "anonymous_comments" }

func (c *AnonymousComment) BeforeCreate(*gorm.DB) error {
	ensureID(&c.CommentID)
	return nil
}
