package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	Name          string `json:"name"           binding:"required,min=2,max=120"`
	Email         string `json:"email"          binding:"required,email,max=255"`
	StudentNumber string `json:"student_number" binding:"required,max=64"`
	Password      string `json:"password"       binding:"required,min=8,max=72"`
	GroupID       string `json:"group_id"       binding:"omitempty,uuid"`
}

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	GroupID string `form:"group_id" binding:"omitempty,uuid"`
}
