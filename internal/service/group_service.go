package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
	pkgerrors "github.com/Skyler-Tan/G17--Mini-IT-project/pkg/errors"
)

// ── 小组模块业务错误 ──

var (
	ErrGroupNotFound   = errors.New("小组不存在")
	ErrGroupNameExists = errors.New("该课程下小组名称已存在")
)

// GroupService 小组业务接口
type GroupService interface {
	Create(ctx context.Context, subjectID string, req *dto.CreateGroupRequest, caller Caller) (*dto.GroupResponse, error)
	ListBySubject(ctx context.Context, subjectID string, caller Caller) ([]dto.GroupResponse, error)
	Get(ctx context.Context, id string, caller Caller) (*dto.GroupResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
	// SetMembers 整体替换小组成员；已在其他小组的学生会被移入本组
	SetMembers(ctx context.Context, id string, req *dto.SetMembersRequest, caller Caller) (*dto.GroupResponse, error)
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *groupService) Create(ctx context.Context, subjectID string, req *dto.CreateGroupRequest, caller Caller) (*dto.GroupResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if !canManageSubject(subject, caller) {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	existing, err := s.repo.Group.GetByName(ctx, subjectID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrGroupNameExists
	}

	group := &model.Group{SubjectID: subjectID, Name: name}
	group.CreatedBy = &caller.UserID
	group.UpdatedBy = &caller.UserID
	if err := s.repo.Group.Create(ctx, group); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrGroupNameExists
		}
		s.logger.Error("创建小组失败", zap.Error(err))
		return nil, err
	}

	resp := toGroupResponse(group, false)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *groupService) ListBySubject(ctx context.Context, subjectID string, caller Caller) ([]dto.GroupResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if !canManageSubject(subject, caller) {
		return nil, ErrForbidden
	}

	groups, err := s.repo.Group.ListBySubject(ctx, subjectID)
	if err != nil {
		s.logger.Error("列出小组失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		result = append(result, toGroupResponse(&groups[i], false))
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *groupService) Get(ctx context.Context, id string, caller Caller) (*dto.GroupResponse, error) {
	group, err := s.loadManagedGroup(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	resp := toGroupResponse(group, true)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *groupService) Delete(ctx context.Context, id string, caller Caller) error {
	if _, err := s.loadManagedGroup(ctx, id, caller); err != nil {
		return err
	}
	if err := s.repo.Group.Delete(ctx, id); err != nil {
		s.logger.Error("删除小组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("小组已删除", zap.String("group_id", id), zap.String("by", caller.UserID))
	return nil
}

// ────────────────────── SetMembers ──────────────────────

func (s *groupService) SetMembers(ctx context.Context, id string, req *dto.SetMembersRequest, caller Caller) (*dto.GroupResponse, error) {
	if _, err := s.loadManagedGroup(ctx, id, caller); err != nil {
		return nil, err
	}

	ids := dedupe(req.StudentIDs)
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	found := make(map[string]bool, len(users))
	for _, u := range users {
		if u.Role == model.RoleStudent {
			found[u.UserID] = true
		}
	}
	for _, sid := range ids {
		if !found[sid] {
			return nil, ErrStudentNotFound
		}
	}

	if err := s.repo.User.SetGroupMembers(ctx, id, ids); err != nil {
		s.logger.Error("设置小组成员失败", zap.String("group_id", id), zap.Error(err))
		return nil, err
	}

	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询小组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toGroupResponse(group, true)
	return &resp, nil
}

// ── 辅助 ──

// loadManagedGroup 加载小组并校验调用者是否负责该课程
func (s *groupService) loadManagedGroup(ctx context.Context, id string, caller Caller) (*model.Group, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !canManageSubject(group.Subject, caller) {
		return nil, ErrForbidden
	}
	return group, nil
}

func toGroupResponse(g *model.Group, withMembers bool) dto.GroupResponse {
	resp := dto.GroupResponse{
		ID:          g.GroupID,
		SubjectID:   g.SubjectID,
		Name:        g.Name,
		MemberCount: len(g.Members),
	}
	if withMembers {
		resp.Members = make([]dto.UserResponse, 0, len(g.Members))
		for i := range g.Members {
			resp.Members = append(resp.Members, toUserResponse(&g.Members[i]))
		}
	}
	return resp
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
