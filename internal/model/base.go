package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(36)"                   json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(36)"                   json:"updated_by,omitempty"`
}

// ensureID 主键为空时在应用侧生成 UUID，postgres 与 mysql 行为一致
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All 返回需要建表的全部模型（mysql 使用 AutoMigrate）
// 顺序按外键依赖排列
func All() []interface{} {
	return []interface{}{
		&User{},
		&Subject{},
		&ReviewSetting{},
		&Group{},
		&PeerReview{},
		&SelfAssessment{},
		&AnonymousComment{},
		&LecturerMark{},
	}
}
