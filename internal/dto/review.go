package dto

// ── 互评模块 DTO ──

// ReviewEntryRequest 对一名组员的评价
type ReviewEntryRequest struct {
	RevieweeID string `json:"reviewee_id" binding:"required,uuid"`
	Score      int    `json:"score"       binding:"peerscore"`
	Comment    string `json:"comment"     binding:"max=2000"`
}

// SubmitReviewsRequest 提交互评（JSON 方式）
// 表单方式使用 reviewee[]、score[]、comment[] 并列数组，见 handler
type SubmitReviewsRequest struct {
	Reviews          []ReviewEntryRequest `json:"reviews"           binding:"dive"`
	AnonymousComment string               `json:"anonymous_comment" binding:"max=2000"`
}

// SelfAssessmentRequest 提交自评
type SelfAssessmentRequest struct {
	Summary    string `json:"summary"    binding:"required,max=5000"`
	Challenges string `json:"challenges" binding:"required,max=5000"`
	Different  string `json:"different"  binding:"required,max=5000"`
	Role       string `json:"role"       binding:"required,max=5000"`
	Feedback   string `json:"feedback"   binding:"max=5000"`
}

// SetMarkRequest 教师评分；version 为当前记录版本号，首次评分传 0
type SetMarkRequest struct {
	GroupMark *float64 `json:"group_mark" binding:"omitempty,gte=0,lte=100"`
	Rating    *int     `json:"rating"     binding:"omitempty,peerscore"`
	Version   int      `json:"version"    binding:"min=0"`
}
