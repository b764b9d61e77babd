package dto

import "time"

// ── 课程模块 DTO ──

// CreateSubjectRequest 创建课程请求
// 教师创建时 lecturer_id 可省略（默认本人），管理员创建时必填
type CreateSubjectRequest struct {
	Name       string `json:"name"        binding:"required,min=2,max=120"`
	LecturerID string `json:"lecturer_id" binding:"omitempty,uuid"`
}

// UpdateSettingRequest 更新互评设置
type UpdateSettingRequest struct {
	Criteria string     `json:"criteria" binding:"max=5000"`
	Deadline *time.Time `json:"deadline"`
}
