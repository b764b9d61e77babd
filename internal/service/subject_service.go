package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
	pkgerrors "github.com/Skyler-Tan/G17--Mini-IT-project/pkg/errors"
)

// ── 课程模块业务错误 ──

var (
	ErrSubjectNotFound   = errors.New("课程不存在")
	ErrSubjectNameExists = errors.New("课程名称已存在")
	ErrLecturerRequired  = errors.New("管理员创建课程时必须指定负责教师")
	ErrLecturerNotFound  = errors.New("指定的教师不存在")
)

// SubjectService 课程与互评设置业务接口
type SubjectService interface {
	Create(ctx context.Context, req *dto.CreateSubjectRequest, caller Caller) (*dto.SubjectResponse, error)
	// List 教师看到自己负责的课程，管理员看到全部，学生看到所在小组的课程
	List(ctx context.Context, caller Caller) ([]dto.SubjectResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
	GetSetting(ctx context.Context, subjectID string) (*dto.SettingResponse, error)
	UpdateSetting(ctx context.Context, subjectID string, req *dto.UpdateSettingRequest, caller Caller) (*dto.SettingResponse, error)
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *subjectService) Create(ctx context.Context, req *dto.CreateSubjectRequest, caller Caller) (*dto.SubjectResponse, error) {
	lecturerID := caller.UserID
	if caller.IsAdmin() {
		if req.LecturerID == "" {
			return nil, ErrLecturerRequired
		}
		lecturerID = req.LecturerID
	} else if req.LecturerID != "" && req.LecturerID != caller.UserID {
		return nil, ErrForbidden
	}

	lecturer, err := s.repo.User.GetByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLecturerNotFound
		}
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}
	if lecturer.Role != model.RoleLecturer && lecturer.Role != model.RoleAdmin {
		return nil, ErrLecturerNotFound
	}

	name := strings.TrimSpace(req.Name)
	existing, err := s.repo.Subject.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrSubjectNameExists
	}

	subject := &model.Subject{Name: name, LecturerID: lecturerID}
	subject.CreatedBy = &caller.UserID
	subject.UpdatedBy = &caller.UserID

	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrSubjectNameExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	subject.Lecturer = lecturer

	s.logger.Info("课程已创建", zap.String("subject_id", subject.SubjectID), zap.String("lecturer_id", lecturerID))
	resp := s.toSubjectResponse(subject)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *subjectService) List(ctx context.Context, caller Caller) ([]dto.SubjectResponse, error) {
	var subjects []model.Subject

	switch {
	case caller.IsAdmin():
		list, err := s.repo.Subject.List(ctx, "")
		if err != nil {
			s.logger.Error("列出课程失败", zap.Error(err))
			return nil, err
		}
		subjects = list
	case caller.Role == model.RoleLecturer:
		list, err := s.repo.Subject.List(ctx, caller.UserID)
		if err != nil {
			s.logger.Error("列出课程失败", zap.Error(err))
			return nil, err
		}
		subjects = list
	default:
		subject, err := s.subjectOfStudent(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		if subject != nil {
			subjects = append(subjects, *subject)
		}
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, s.toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

// subjectOfStudent 学生未分组时返回 nil
func (s *subjectService) subjectOfStudent(ctx context.Context, userID string) (*model.Subject, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if user.GroupID == nil {
		return nil, nil
	}
	group, err := s.repo.Group.GetByID(ctx, *user.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}
	subject, err := s.repo.Subject.GetByID(ctx, group.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	return subject, nil
}

// ────────────────────── Delete ──────────────────────

func (s *subjectService) Delete(ctx context.Context, id string, caller Caller) error {
	subject, err := s.getSubject(ctx, id)
	if err != nil {
		return err
	}
	if !canManageSubject(subject, caller) {
		return ErrForbidden
	}

	if err := s.repo.Subject.Delete(ctx, id); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("课程已删除", zap.String("subject_id", id), zap.String("by", caller.UserID))
	return nil
}

// ────────────────────── Setting ──────────────────────

func (s *subjectService) GetSetting(ctx context.Context, subjectID string) (*dto.SettingResponse, error) {
	subject, err := s.getSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return s.toSettingResponse(subject.SubjectID, subject.Setting), nil
}

func (s *subjectService) UpdateSetting(ctx context.Context, subjectID string, req *dto.UpdateSettingRequest, caller Caller) (*dto.SettingResponse, error) {
	subject, err := s.getSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !canManageSubject(subject, caller) {
		return nil, ErrForbidden
	}

	setting := &model.ReviewSetting{
		SubjectID: subjectID,
		Criteria:  strings.TrimSpace(req.Criteria),
		Deadline:  req.Deadline,
	}
	setting.CreatedBy = &caller.UserID
	setting.UpdatedBy = &caller.UserID

	if err := s.repo.Setting.Upsert(ctx, setting); err != nil {
		s.logger.Error("保存互评设置失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	return s.toSettingResponse(subjectID, setting), nil
}

// ── 辅助 ──

func (s *subjectService) getSubject(ctx context.Context, id string) (*model.Subject, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

func (s *subjectService) toSubjectResponse(subject *model.Subject) dto.SubjectResponse {
	resp := dto.SubjectResponse{
		ID:         subject.SubjectID,
		Name:       subject.Name,
		LecturerID: subject.LecturerID,
		CreatedAt:  formatTime(subject.CreatedAt),
	}
	if subject.Lecturer != nil {
		resp.LecturerName = subject.Lecturer.Name
	}
	if subject.Setting != nil {
		resp.Setting = s.toSettingResponse(subject.SubjectID, subject.Setting)
	}
	return resp
}

// toSettingResponse setting 为 nil 表示尚未设置，返回空设置
func (s *subjectService) toSettingResponse(subjectID string, setting *model.ReviewSetting) *dto.SettingResponse {
	resp := &dto.SettingResponse{SubjectID: subjectID}
	if setting == nil {
		return resp
	}
	resp.Criteria = setting.Criteria
	resp.Deadline = formatTimePtr(setting.Deadline)
	resp.Closed = setting.Closed(s.now())
	return resp
}
