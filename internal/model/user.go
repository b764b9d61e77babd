package model

import "gorm.io/gorm"

// 用户角色
const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

// User 用户表：对应 users（学生、教师、管理员）
type User struct {
	UserID        string  `gorm:"type:varchar(36);primaryKey"                json:"user_id"`
	Name          string  `gorm:"type:varchar(120);not null"                 json:"name"`
	StudentNumber *string `gorm:"type:varchar(64);uniqueIndex"               json:"student_number,omitempty"`
	Email         string  `gorm:"type:varchar(255);not null;uniqueIndex"     json:"email"`
	PasswordHash  string  `gorm:"type:varchar(255);not null"                 json:"-"`
	Role          string  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	GroupID       *string `gorm:"type:varchar(36);index"                     json:"group_id,omitempty"`
	BaseModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}

// IsLecturer 教师与管理员都可以查看全部评语
func (u *User) IsLecturer() bool {
	return u.Role == RoleLecturer || u.Role == RoleAdmin
}
