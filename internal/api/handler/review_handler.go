package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/review"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/service"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/response"
)

// ReviewHandler 互评、自评、结果与教师评分 HTTP 处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler 创建 ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// Form 互评表单（组员及上次提交内容）
// GET /api/v1/reviews/form
func (h *ReviewHandler) Form(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	form, err := h.reviewSvc.Form(c.Request.Context(), caller)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, form)
}

// Submit 提交互评
// POST /api/v1/reviews
// 支持 JSON 与表单两种方式；表单使用 reviewee[]、score[]、comment[] 并列数组
func (h *ReviewHandler) Submit(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var (
		entries   []review.Entry
		anonymous string
	)
	if c.ContentType() == binding.MIMEJSON {
		var req dto.SubmitReviewsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
		entries = make([]review.Entry, 0, len(req.Reviews))
		for _, r := range req.Reviews {
			entries = append(entries, review.Entry{RevieweeID: r.RevieweeID, Score: r.Score, Comment: r.Comment})
		}
		anonymous = req.AnonymousComment
	} else {
		var err error
		entries, err = review.ZipEntries(
			c.PostFormArray("reviewee[]"),
			c.PostFormArray("score[]"),
			c.PostFormArray("comment[]"),
		)
		if err != nil {
			h.handleReviewError(c, err)
			return
		}
		anonymous = c.PostForm("anonymous_comment")
	}

	result, err := h.reviewSvc.Submit(c.Request.Context(), caller, entries, anonymous)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, result)
}

// GetSelfAssessment 当前学生的自评
// GET /api/v1/self-assessment
func (h *ReviewHandler) GetSelfAssessment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	a, err := h.reviewSvc.GetSelfAssessment(c.Request.Context(), caller)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, a)
}

// SubmitSelfAssessment 提交或覆盖自评
// PUT /api/v1/self-assessment
func (h *ReviewHandler) SubmitSelfAssessment(c *gin.Context) {
	var req dto.SelfAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	a, err := h.reviewSvc.SubmitSelfAssessment(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, a)
}

// Completion 小组完成情况
// GET /api/v1/groups/:id/completion
func (h *ReviewHandler) Completion(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.reviewSvc.Completion(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, result)
}

// Results 小组结果；未全部完成时 status=pending
// GET /api/v1/groups/:id/results
func (h *ReviewHandler) Results(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.reviewSvc.Results(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, result)
}

// ListReviews 小组全部互评记录（教师）
// GET /api/v1/groups/:id/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.reviewSvc.ListReviews(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// SetMark 教师评分（乐观锁）
// PUT /api/v1/groups/:id/marks/:student_id
func (h *ReviewHandler) SetMark(c *gin.Context) {
	var req dto.SetMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	mark, err := h.reviewSvc.SetMark(c.Request.Context(), c.Param("id"), c.Param("student_id"), &req, caller)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, mark)
}

func (h *ReviewHandler) handleReviewError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrOnlyStudents):
		response.Forbidden(c, 15001, "仅学生可以提交互评与自评")
	case errors.Is(err, service.ErrNotInGroup):
		response.Error(c, http.StatusConflict, 15002, "尚未加入任何小组")
	case errors.Is(err, service.ErrReviewWindowClosed):
		response.Forbidden(c, 15003, "互评已截止")
	case errors.Is(err, service.ErrSelfAssessmentNotFound):
		response.NotFound(c, 15004, "尚未提交自评")
	case errors.Is(err, service.ErrStudentNotInGroup):
		response.BadRequest(c, 15005, "该学生不属于此小组")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 13001, "小组不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11002, "用户不存在")
	default:
		response.InternalError(c)
	}
}
