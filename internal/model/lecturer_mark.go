package model

import "gorm.io/gorm"

// LecturerMark 教师评分表：对应 lecturer_marks
// GroupMark 0-100，Rating 1-5，均可暂未设置；Version 用于乐观锁
type LecturerMark struct {
	MarkID    string   `gorm:"type:varchar(36);primaryKey"           json:"mark_id"`
	StudentID string   `gorm:"type:varchar(36);not null;uniqueIndex" json:"student_id"`
	GroupID   string   `gorm:"type:varchar(36);not null;index"       json:"group_id"`
	GroupMark *float64 `gorm:"type:numeric(5,2)"                     json:"group_mark"`
	Rating    *int     `gorm:"type:smallint"                         json:"rating"`
	Version   int      `gorm:"not null;default:1"                    json:"version"`
	BaseModel
}

func (LecturerMark) TableName() string { return "lecturer_marks" }

func (m *LecturerMark) BeforeCreate(*gorm.DB) error {
	ensureID(&m.MarkID)
	return nil
}
