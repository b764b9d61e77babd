package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求；login 可以是邮箱或学号
type LoginRequest struct {
	Login    string `json:"login"    binding:"required,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}
