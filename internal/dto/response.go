package dto

// ── 认证模块响应 ──

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // 秒
	User        UserResponse `json:"user"`
}

// ── 用户 / 学生响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	StudentNumber string  `json:"student_number,omitempty"`
	Role          string  `json:"role"`
	GroupID       *string `json:"group_id,omitempty"`
}

// ── 课程响应 ──

// SubjectResponse 课程信息
type SubjectResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	LecturerID   string           `json:"lecturer_id"`
	LecturerName string           `json:"lecturer_name,omitempty"`
	Setting      *SettingResponse `json:"setting,omitempty"`
	CreatedAt    string           `json:"created_at"`
}

// SettingResponse 互评设置
type SettingResponse struct {
	SubjectID string  `json:"subject_id"`
	Criteria  string  `json:"criteria"`
	Deadline  *string `json:"deadline,omitempty"`
	Closed    bool    `json:"closed"`
}

// ── 小组响应 ──

// GroupResponse 小组信息
type GroupResponse struct {
	ID          string         `json:"id"`
	SubjectID   string         `json:"subject_id"`
	Name        string         `json:"name"`
	MemberCount int            `json:"member_count"`
	Members     []UserResponse `json:"members,omitempty"`
}

// ── 互评响应 ──

// StudentCompletion 单个学生完成情况
type StudentCompletion struct {
	StudentID         string `json:"student_id"`
	Name              string `json:"name"`
	ReviewsGiven      int    `json:"reviews_given"`
	HasSelfAssessment bool   `json:"has_self_assessment"`
	Completed         bool   `json:"completed"`
}

// CompletionResponse 小组完成情况
type CompletionResponse struct {
	GroupID         string              `json:"group_id"`
	GroupName       string              `json:"group_name"`
	RequiredReviews int                 `json:"required_reviews"`
	CompletedCount  int                 `json:"completed_count"`
	Total           int                 `json:"total"`
	AllCompleted    bool                `json:"all_completed"`
	Students        []StudentCompletion `json:"students"`
}

// 结果发布状态
const (
	ResultStatusPending   = "pending"
	ResultStatusPublished = "published"
)

// ResultsResponse 小组互评结果
// status=pending 时 rows 为空，不提供任何部分结果
type ResultsResponse struct {
	GroupID           string                   `json:"group_id"`
	Status            string                   `json:"status"`
	Policy            string                   `json:"policy"`
	CompletedCount    int                      `json:"completed_count"`
	Total             int                      `json:"total"`
	Rows              []ResultRow              `json:"rows"`
	AnonymousComments []string                 `json:"anonymous_comments"`
	SelfAssessments   []SelfAssessmentResponse `json:"self_assessments"`
}

// ResultRow 单个学生结果
// final_mark 为 null 表示教师评分未完成
type ResultRow struct {
	StudentID    string            `json:"student_id"`
	Name         string            `json:"name"`
	AvgPeerScore *float64          `json:"avg_peer_score"`
	ReviewCount  int               `json:"review_count"`
	GroupMark    *float64          `json:"group_mark"`
	Rating       *int              `json:"rating"`
	FinalMark    *float64          `json:"final_mark"`
	Comments     []CommentResponse `json:"comments"`
}

// CommentResponse 评语
type CommentResponse struct {
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name"`
	Comment      string `json:"comment"`
}

// ReviewFormResponse 互评表单预填数据
type ReviewFormResponse struct {
	GroupID   string       `json:"group_id"`
	GroupName string       `json:"group_name"`
	Criteria  string       `json:"criteria"`
	Deadline  *string      `json:"deadline,omitempty"`
	Closed    bool         `json:"closed"`
	Members   []FormMember `json:"members"`
}

// FormMember 需要评价的组员及上次提交内容
type FormMember struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Score     *int   `json:"score,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// SubmitReviewsResponse 提交互评结果
type SubmitReviewsResponse struct {
	Stored       int  `json:"stored"`
	AllCompleted bool `json:"all_completed"`
}

// ReviewResponse 教师查看的互评记录
type ReviewResponse struct {
	ID           string `json:"id"`
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name"`
	RevieweeID   string `json:"reviewee_id"`
	RevieweeName string `json:"reviewee_name"`
	Score        int    `json:"score"`
	Comment      string `json:"comment"`
	CreatedAt    string `json:"created_at"`
}

// SelfAssessmentResponse 自评内容
type SelfAssessmentResponse struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name,omitempty"`
	Summary     string  `json:"summary"`
	Challenges  string  `json:"challenges"`
	Different   string  `json:"different"`
	Role        string  `json:"role"`
	Feedback    *string `json:"feedback,omitempty"`
	SubmittedAt string  `json:"submitted_at"`
}

// MarkResponse 教师评分
type MarkResponse struct {
	StudentID string   `json:"student_id"`
	GroupID   string   `json:"group_id"`
	GroupMark *float64 `json:"group_mark"`
	Rating    *int     `json:"rating"`
	Version   int      `json:"version"`
}
