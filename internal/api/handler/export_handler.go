package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/service"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/response"
)

const (
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCalendar = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportResults 导出小组结果 Excel
// GET /api/v1/groups/:id/results/export
func (h *ExportHandler) ExportResults(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportResults(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, mimeXLSX, buf.Bytes())
}

// DeadlineCalendar 下载互评截止时间日历
// GET /api/v1/subjects/:id/deadline.ics
func (h *ExportHandler) DeadlineCalendar(c *gin.Context) {
	data, filename, err := h.exportSvc.DeadlineCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, mimeCalendar, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrResultsNotPublished):
		response.Conflict(c, 16101, "小组尚未全部完成，结果未发布")
	case errors.Is(err, service.ErrNoDeadline):
		response.NotFound(c, 16102, "该课程未设置互评截止时间")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 13001, "小组不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12001, "课程不存在")
	default:
		response.InternalError(c)
	}
}
