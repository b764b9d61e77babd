package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/service"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/response"
)

// GroupHandler 小组模块 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// ListGroups 课程下的小组
// GET /api/v1/subjects/:id/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	groups, err := h.groupSvc.ListBySubject(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// CreateGroup 创建小组
// POST /api/v1/subjects/:id/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.Created(c, group)
}

// GetGroup 小组详情（含成员）
// GET /api/v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	group, err := h.groupSvc.Get(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, group)
}

// DeleteGroup 删除小组
// DELETE /api/v1/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// SetMembers 整体替换小组成员
// PUT /api/v1/groups/:id/members
func (h *GroupHandler) SetMembers(c *gin.Context) {
	var req dto.SetMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	group, err := h.groupSvc.SetMembers(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, group)
}

func (h *GroupHandler) handleGroupError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 13001, "小组不存在")
	case errors.Is(err, service.ErrGroupNameExists):
		response.Conflict(c, 13002, "该课程下小组名称已存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.BadRequest(c, 14001, "包含不存在的学生")
	default:
		response.InternalError(c)
	}
}
