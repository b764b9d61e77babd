package model

import (
	"time"

	"gorm.io/gorm"
)

// Subject 课程表：对应 subjects
type Subject struct {
	SubjectID  string `gorm:"type:varchar(36);primaryKey"            json:"subject_id"`
	Name       string `gorm:"type:varchar(120);not null;uniqueIndex" json:"name"`
	LecturerID string `gorm:"type:varchar(36);not null"              json:"lecturer_id"`
	BaseModel

	// 关联
	Lecturer *User          `gorm:"foreignKey:LecturerID;references:UserID" json:"lecturer,omitempty"`
	Setting  *ReviewSetting `gorm:"foreignKey:SubjectID;references:SubjectID;constraint:OnDelete:CASCADE" json:"setting,omitempty"`
}

func (Subject) TableName() string { return "subjects" }

func (s *Subject) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SubjectID)
	return nil
}

// ReviewSetting 课程互评设置：对应 review_settings
// 每门课程至多一条，主键即 subject_id
type ReviewSetting struct {
	SubjectID string     `gorm:"type:varchar(36);primaryKey" json:"subject_id"`
	Criteria  string     `gorm:"type:text;not null"          json:"criteria"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	BaseModel
}

func (ReviewSetting) TableName() string { return "review_settings" }

// Closed 截止时间已过
func (s *ReviewSetting) Closed(now time.Time) bool {
	return s != nil && s.Deadline != nil && now.After(*s.Deadline)
}
