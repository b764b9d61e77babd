package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Skyler-Tan/G17--Mini-IT-project/config"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/jwt"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/mailer"
)

// ErrForbidden 无权操作该资源
var ErrForbidden = errors.New("无权操作该资源")

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Subject SubjectService
	Group   GroupService
	Student StudentService
	Review  ReviewService
	Export  ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	mail mailer.Mailer,
	logger *zap.Logger,
) *Service {
	reviewSvc := NewReviewService(cfg, repo, mail, logger)
	return &Service{
		Auth:    NewAuthService(repo, jwtMgr, logger),
		Subject: NewSubjectService(repo, logger),
		Group:   NewGroupService(repo, logger),
		Student: NewStudentService(repo, logger),
		Review:  reviewSvc,
		Export:  NewExportService(cfg, repo, reviewSvc, logger),
	}
}

// Caller 当前请求的调用者，由 JWT 声明构造
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin 管理员
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// IsLecturer 教师或管理员
func (c Caller) IsLecturer() bool {
	return c.Role == model.RoleLecturer || c.Role == model.RoleAdmin
}

// canManageSubject 管理员或课程负责教师
func canManageSubject(subject *model.Subject, caller Caller) bool {
	if caller.IsAdmin() {
		return true
	}
	return subject != nil && caller.Role == model.RoleLecturer && subject.LecturerID == caller.UserID
}

// ── 转换辅助 ──

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toUserResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:      u.UserID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		GroupID: u.GroupID,
	}
	if u.StudentNumber != nil {
		resp.StudentNumber = *u.StudentNumber
	}
	return resp
}
