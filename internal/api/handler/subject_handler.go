package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/service"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/response"
)

// SubjectHandler 课程与互评设置 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// ListSubjects 课程列表（按角色过滤）
// GET /api/v1/subjects
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	subjects, err := h.subjectSvc.List(c.Request.Context(), caller)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, gin.H{"list": subjects})
}

// CreateSubject 创建课程
// POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	subject, err := h.subjectSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.Created(c, subject)
}

// DeleteSubject 删除课程（级联删除小组）
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.subjectSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetSetting 互评设置
// GET /api/v1/subjects/:id/settings
func (h *SubjectHandler) GetSetting(c *gin.Context) {
	setting, err := h.subjectSvc.GetSetting(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, setting)
}

// UpdateSetting 更新评分标准与截止时间
// PUT /api/v1/subjects/:id/settings
func (h *SubjectHandler) UpdateSetting(c *gin.Context) {
	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	setting, err := h.subjectSvc.UpdateSetting(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, setting)
}

func (h *SubjectHandler) handleSubjectError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrSubjectNameExists):
		response.Conflict(c, 12002, "课程名称已存在")
	case errors.Is(err, service.ErrLecturerRequired):
		response.BadRequest(c, 12003, "管理员创建课程时必须指定负责教师")
	case errors.Is(err, service.ErrLecturerNotFound):
		response.BadRequest(c, 12004, "指定的教师不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11002, "用户不存在")
	default:
		response.InternalError(c)
	}
}
