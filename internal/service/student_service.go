package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
	pkgerrors "github.com/Skyler-Tan/G17--Mini-IT-project/pkg/errors"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound     = errors.New("学生不存在")
	ErrEmailExists         = errors.New("邮箱已被使用")
	ErrStudentNumberExists = errors.New("学号已被使用")
)

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, caller Caller) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.UserResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, caller Caller) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	number := strings.TrimSpace(req.StudentNumber)

	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if existing, err := s.repo.User.GetByLogin(ctx, number); err == nil && existing.StudentNumber != nil && *existing.StudentNumber == number {
		return nil, ErrStudentNumberExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	var groupID *string
	if req.GroupID != "" {
		group, err := s.repo.Group.GetByID(ctx, req.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGroupNotFound
			}
			s.logger.Error("查询小组失败", zap.Error(err))
			return nil, err
		}
		if !canManageSubject(group.Subject, caller) {
			return nil, ErrForbidden
		}
		groupID = &group.GroupID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:          strings.TrimSpace(req.Name),
		StudentNumber: &number,
		Email:         email,
		PasswordHash:  string(hash),
		Role:          model.RoleStudent,
		GroupID:       groupID,
	}
	user.CreatedBy = &caller.UserID
	user.UpdatedBy = &caller.UserID

	if err := s.repo.User.Create(ctx, user); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.UserResponse, error) {
	users, err := s.repo.User.ListStudents(ctx, req.GroupID)
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

func (s *studentService) Delete(ctx context.Context, id string, caller Caller) error {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if user.Role != model.RoleStudent {
		return ErrStudentNotFound
	}
	if err := s.repo.User.Delete(ctx, id); err != nil {
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("学生已删除", zap.String("student_id", id), zap.String("by", caller.UserID))
	return nil
}
