package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/config"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/review"
	pkgerrors "github.com/Skyler-Tan/G17--Mini-IT-project/pkg/errors"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/mailer"
)

// ── 互评模块业务错误 ──

var (
	ErrOnlyStudents           = errors.New("仅学生可以提交互评与自评")
	ErrNotInGroup             = errors.New("尚未加入任何小组")
	ErrReviewWindowClosed     = errors.New("互评已截止")
	ErrSelfAssessmentNotFound = errors.New("尚未提交自评")
	ErrStudentNotInGroup      = errors.New("该学生不属于此小组")
)

// ReviewService 互评、自评、完成度、结果与教师评分
type ReviewService interface {
	// Form 当前学生需要评价的组员及上次提交的内容
	Form(ctx context.Context, caller Caller) (*dto.ReviewFormResponse, error)
	// Submit 提交完整的互评；先删除该学生以前的互评再写入，整体在一个事务内
	Submit(ctx context.Context, caller Caller, entries []review.Entry, anonymousComment string) (*dto.SubmitReviewsResponse, error)
	GetSelfAssessment(ctx context.Context, caller Caller) (*dto.SelfAssessmentResponse, error)
	SubmitSelfAssessment(ctx context.Context, caller Caller, req *dto.SelfAssessmentRequest) (*dto.SelfAssessmentResponse, error)
	Completion(ctx context.Context, groupID string, caller Caller) (*dto.CompletionResponse, error)
	// Results 小组未全部完成时返回 status=pending 且不含任何结果行
	Results(ctx context.Context, groupID string, caller Caller) (*dto.ResultsResponse, error)
	ListReviews(ctx context.Context, groupID string, caller Caller) ([]dto.ReviewResponse, error)
	SetMark(ctx context.Context, groupID, studentID string, req *dto.SetMarkRequest, caller Caller) (*dto.MarkResponse, error)
}

type reviewService struct {
	repo    *repository.Repository
	policy  review.BlendPolicy
	mailer  mailer.Mailer
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(cfg *config.Config, repo *repository.Repository, mail mailer.Mailer, logger *zap.Logger) ReviewService {
	policy, err := review.NewBlendPolicy(cfg.Review.BlendPolicy)
	if err != nil {
		logger.Warn("未知的成绩合成策略，使用默认策略", zap.String("policy", cfg.Review.BlendPolicy))
		policy = review.ThreeTermBlend{}
	}
	return &reviewService{
		repo:    repo,
		policy:  policy,
		mailer:  mail,
		baseURL: strings.TrimRight(cfg.Server.BaseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// cohortSnapshot 一次请求内读取的小组数据
type cohortSnapshot struct {
	members    []string
	names      map[string]string
	reviews    []model.PeerReview
	selfs      []model.SelfAssessment
	completion review.CohortCompletion
}

func (c *cohortSnapshot) engineReviews() []review.Review {
	out := make([]review.Review, 0, len(c.reviews))
	for _, r := range c.reviews {
		out = append(out, review.Review{
			ReviewerID: r.ReviewerID,
			RevieweeID: r.RevieweeID,
			Score:      r.Score,
			Comment:    r.Comment,
		})
	}
	return out
}

func (s *reviewService) loadCohort(ctx context.Context, group *model.Group) (*cohortSnapshot, error) {
	snap := &cohortSnapshot{
		members: make([]string, 0, len(group.Members)),
		names:   make(map[string]string, len(group.Members)),
	}
	for _, m := range group.Members {
		snap.members = append(snap.members, m.UserID)
		snap.names[m.UserID] = m.Name
	}

	var err error
	if snap.reviews, err = s.repo.Review.ListByGroup(ctx, group.GroupID); err != nil {
		s.logger.Error("查询互评失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, err
	}
	if snap.selfs, err = s.repo.SelfAssessment.ListByGroup(ctx, group.GroupID); err != nil {
		s.logger.Error("查询自评失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, err
	}

	selfAssessed := make(map[string]bool, len(snap.selfs))
	for _, a := range snap.selfs {
		selfAssessed[a.StudentID] = true
	}
	snap.completion = review.TrackCompletion(snap.members, snap.engineReviews(), selfAssessed)
	return snap, nil
}

// ────────────────────── Form ──────────────────────

func (s *reviewService) Form(ctx context.Context, caller Caller) (*dto.ReviewFormResponse, error) {
	user, group, err := s.studentGroup(ctx, caller)
	if err != nil {
		return nil, err
	}

	prior, err := s.repo.Review.ListByReviewer(ctx, user.UserID)
	if err != nil {
		s.logger.Error("查询历史互评失败", zap.Error(err))
		return nil, err
	}
	byReviewee := make(map[string]model.PeerReview, len(prior))
	for _, r := range prior {
		byReviewee[r.RevieweeID] = r
	}

	resp := &dto.ReviewFormResponse{
		GroupID:   group.GroupID,
		GroupName: group.Name,
		Members:   make([]dto.FormMember, 0, len(group.Members)),
	}
	setting, err := s.setting(ctx, group.SubjectID)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		resp.Criteria = setting.Criteria
		resp.Deadline = formatTimePtr(setting.Deadline)
		resp.Closed = setting.Closed(s.now())
	}

	for _, m := range group.Members {
		if m.UserID == user.UserID {
			continue
		}
		fm := dto.FormMember{StudentID: m.UserID, Name: m.Name}
		if r, ok := byReviewee[m.UserID]; ok {
			score := r.Score
			fm.Score = &score
			fm.Comment = r.Comment
		}
		resp.Members = append(resp.Members, fm)
	}
	return resp, nil
}

// ────────────────────── Submit ──────────────────────

func (s *reviewService) Submit(ctx context.Context, caller Caller, entries []review.Entry, anonymousComment string) (*dto.SubmitReviewsResponse, error) {
	user, group, err := s.studentGroup(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, group); err != nil {
		return nil, err
	}

	if err := review.ValidateSubmission(user.UserID, memberIDs(group), entries); err != nil {
		return nil, err
	}

	before, err := s.loadCohort(ctx, group)
	if err != nil {
		return nil, err
	}

	rows := make([]model.PeerReview, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, model.PeerReview{
			GroupID:    group.GroupID,
			ReviewerID: user.UserID,
			RevieweeID: e.RevieweeID,
			Score:      e.Score,
			Comment:    strings.TrimSpace(e.Comment),
		})
	}
	anonymous := strings.TrimSpace(anonymousComment)

	err = s.inTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Review.DeleteByReviewer(ctx, user.UserID); err != nil {
			return fmt.Errorf("删除旧互评: %w", err)
		}
		if err := txRepo.Review.BatchCreate(ctx, rows); err != nil {
			return fmt.Errorf("写入互评: %w", err)
		}
		if anonymous != "" {
			if err := txRepo.AnonymousComment.Create(ctx, &model.AnonymousComment{GroupID: group.GroupID, Content: anonymous}); err != nil {
				return fmt.Errorf("写入匿名评语: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("提交互评失败", zap.String("reviewer_id", user.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("互评已提交",
		zap.String("reviewer_id", user.UserID),
		zap.String("group_id", group.GroupID),
		zap.Int("count", len(rows)),
	)

	allCompleted := s.afterWrite(ctx, group, before.completion.AllCompleted)
	return &dto.SubmitReviewsResponse{Stored: len(rows), AllCompleted: allCompleted}, nil
}

// ────────────────────── SelfAssessment ──────────────────────

func (s *reviewService) GetSelfAssessment(ctx context.Context, caller Caller) (*dto.SelfAssessmentResponse, error) {
	if caller.Role != model.RoleStudent {
		return nil, ErrOnlyStudents
	}
	a, err := s.repo.SelfAssessment.GetByStudent(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSelfAssessmentNotFound
		}
		s.logger.Error("查询自评失败", zap.Error(err))
		return nil, err
	}
	resp := toSelfAssessmentResponse(a, "")
	return &resp, nil
}

func (s *reviewService) SubmitSelfAssessment(ctx context.Context, caller Caller, req *dto.SelfAssessmentRequest) (*dto.SelfAssessmentResponse, error) {
	user, group, err := s.studentGroup(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, group); err != nil {
		return nil, err
	}

	in := review.SelfAssessmentInput{
		Summary:    strings.TrimSpace(req.Summary),
		Challenges: strings.TrimSpace(req.Challenges),
		Different:  strings.TrimSpace(req.Different),
		Role:       strings.TrimSpace(req.Role),
		Feedback:   strings.TrimSpace(req.Feedback),
	}
	if err := review.ValidateSelfAssessment(in); err != nil {
		return nil, err
	}

	before, err := s.loadCohort(ctx, group)
	if err != nil {
		return nil, err
	}

	a := &model.SelfAssessment{
		StudentID:  user.UserID,
		GroupID:    group.GroupID,
		Summary:    in.Summary,
		Challenges: in.Challenges,
		Different:  in.Different,
		Role:       in.Role,
		CreatedAt:  s.now(),
	}
	if in.Feedback != "" {
		a.Feedback = &in.Feedback
	}

	err = s.inTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.SelfAssessment.DeleteByStudent(ctx, user.UserID); err != nil {
			return fmt.Errorf("删除旧自评: %w", err)
		}
		if err := txRepo.SelfAssessment.Create(ctx, a); err != nil {
			return fmt.Errorf("写入自评: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("提交自评失败", zap.String("student_id", user.UserID), zap.Error(err))
		return nil, err
	}

	s.afterWrite(ctx, group, before.completion.AllCompleted)

	resp := toSelfAssessmentResponse(a, user.Name)
	return &resp, nil
}

// ────────────────────── Completion ──────────────────────

func (s *reviewService) Completion(ctx context.Context, groupID string, caller Caller) (*dto.CompletionResponse, error) {
	group, err := s.loadViewableGroup(ctx, groupID, caller)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadCohort(ctx, group)
	if err != nil {
		return nil, err
	}

	resp := &dto.CompletionResponse{
		GroupID:         group.GroupID,
		GroupName:       group.Name,
		RequiredReviews: snap.completion.Required,
		CompletedCount:  snap.completion.CompletedCount,
		Total:           len(snap.members),
		AllCompleted:    snap.completion.AllCompleted,
		Students:        make([]dto.StudentCompletion, 0, len(snap.completion.Students)),
	}
	for _, st := range snap.completion.Students {
		resp.Students = append(resp.Students, dto.StudentCompletion{
			StudentID:         st.StudentID,
			Name:              snap.names[st.StudentID],
			ReviewsGiven:      st.ReviewsGiven,
			HasSelfAssessment: st.HasSelfAssessment,
			Completed:         st.Completed,
		})
	}
	return resp, nil
}

// ────────────────────── Results ──────────────────────

func (s *reviewService) Results(ctx context.Context, groupID string, caller Caller) (*dto.ResultsResponse, error) {
	group, err := s.loadViewableGroup(ctx, groupID, caller)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadCohort(ctx, group)
	if err != nil {
		return nil, err
	}

	resp := &dto.ResultsResponse{
		GroupID:           group.GroupID,
		Status:            dto.ResultStatusPending,
		Policy:            s.policy.Name(),
		CompletedCount:    snap.completion.CompletedCount,
		Total:             len(snap.members),
		Rows:              []dto.ResultRow{},
		AnonymousComments: []string{},
		SelfAssessments:   visibleSelfAssessments(snap, caller),
	}

	viewer := review.Viewer{ID: caller.UserID, IsLecturer: caller.IsLecturer()}
	results, err := review.Aggregate(snap.members, snap.engineReviews(), snap.completion, viewer)
	if errors.Is(err, review.ErrNotReady) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	marks, err := s.repo.Mark.ListByGroup(ctx, group.GroupID)
	if err != nil {
		s.logger.Error("查询教师评分失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, err
	}
	markOf := make(map[string]model.LecturerMark, len(marks))
	for _, m := range marks {
		markOf[m.StudentID] = m
	}

	cohortMean := review.CohortMean(results)
	for _, r := range results {
		avg := r.Average
		display := r.DisplayAverage()
		row := dto.ResultRow{
			StudentID:    r.StudentID,
			Name:         snap.names[r.StudentID],
			AvgPeerScore: &display,
			ReviewCount:  r.ReviewCount,
			Comments:     make([]dto.CommentResponse, 0, len(r.Comments)),
		}
		for _, c := range r.Comments {
			row.Comments = append(row.Comments, dto.CommentResponse{
				ReviewerID:   c.ReviewerID,
				ReviewerName: snap.names[c.ReviewerID],
				Comment:      c.Text,
			})
		}

		var ext review.ExternalMark
		if m, ok := markOf[r.StudentID]; ok {
			ext = review.ExternalMark{GroupMark: m.GroupMark, Rating: m.Rating}
			row.GroupMark = m.GroupMark
			row.Rating = m.Rating
		}
		final, err := s.policy.Blend(review.BlendInput{Average: &avg, CohortMean: cohortMean, Mark: ext})
		switch {
		case err == nil:
			row.FinalMark = &final
		case errors.Is(err, review.ErrMarkIncomplete):
			// 教师评分未完成，final_mark 保持为空
		default:
			return nil, err
		}
		resp.Rows = append(resp.Rows, row)
	}

	comments, err := s.repo.AnonymousComment.ListByGroup(ctx, group.GroupID)
	if err != nil {
		s.logger.Error("查询匿名评语失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, err
	}
	for _, c := range comments {
		resp.AnonymousComments = append(resp.AnonymousComments, c.Content)
	}

	resp.Status = dto.ResultStatusPublished
	return resp, nil
}

// visibleSelfAssessments 教师看全部，学生只看自己的
func visibleSelfAssessments(snap *cohortSnapshot, caller Caller) []dto.SelfAssessmentResponse {
	out := make([]dto.SelfAssessmentResponse, 0, len(snap.selfs))
	for i := range snap.selfs {
		a := &snap.selfs[i]
		if !caller.IsLecturer() && a.StudentID != caller.UserID {
			continue
		}
		out = append(out, toSelfAssessmentResponse(a, snap.names[a.StudentID]))
	}
	return out
}

// ────────────────────── ListReviews ──────────────────────

func (s *reviewService) ListReviews(ctx context.Context, groupID string, caller Caller) ([]dto.ReviewResponse, error) {
	if !caller.IsLecturer() {
		return nil, ErrForbidden
	}
	group, err := s.loadViewableGroup(ctx, groupID, caller)
	if err != nil {
		return nil, err
	}
	reviews, err := s.repo.Review.ListByGroup(ctx, group.GroupID)
	if err != nil {
		s.logger.Error("查询互评失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	names := make(map[string]string, len(group.Members))
	for _, m := range group.Members {
		names[m.UserID] = m.Name
	}
	var missing []string
	for _, r := range reviews {
		for _, id := range []string{r.ReviewerID, r.RevieweeID} {
			if _, ok := names[id]; !ok {
				names[id] = ""
				missing = append(missing, id)
			}
		}
	}
	if len(missing) > 0 {
		// 已离开小组的学生
		users, err := s.repo.User.ListByIDs(ctx, missing)
		if err != nil {
			s.logger.Warn("查询学生姓名失败", zap.Error(err))
		}
		for _, u := range users {
			names[u.UserID] = u.Name
		}
	}

	result := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		result = append(result, dto.ReviewResponse{
			ID:           r.ReviewID,
			ReviewerID:   r.ReviewerID,
			ReviewerName: names[r.ReviewerID],
			RevieweeID:   r.RevieweeID,
			RevieweeName: names[r.RevieweeID],
			Score:        r.Score,
			Comment:      r.Comment,
			CreatedAt:    formatTime(r.CreatedAt),
		})
	}
	return result, nil
}

// ────────────────────── SetMark ──────────────────────

func (s *reviewService) SetMark(ctx context.Context, groupID, studentID string, req *dto.SetMarkRequest, caller Caller) (*dto.MarkResponse, error) {
	if !caller.IsLecturer() {
		return nil, ErrForbidden
	}
	group, err := s.loadViewableGroup(ctx, groupID, caller)
	if err != nil {
		return nil, err
	}
	if !isMember(group, studentID) {
		return nil, ErrStudentNotInGroup
	}

	mark, err := s.repo.Mark.GetByStudent(ctx, studentID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if req.Version != 0 {
			return nil, pkgerrors.ErrOptimisticLock
		}
		mark = &model.LecturerMark{
			StudentID: studentID,
			GroupID:   group.GroupID,
			GroupMark: req.GroupMark,
			Rating:    req.Rating,
			Version:   1,
		}
		mark.CreatedBy = &caller.UserID
		mark.UpdatedBy = &caller.UserID
		if err := s.repo.Mark.Create(ctx, mark); err != nil {
			if pkgerrors.IsDuplicateKey(err) {
				return nil, pkgerrors.ErrOptimisticLock
			}
			s.logger.Error("创建教师评分失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
	case err != nil:
		s.logger.Error("查询教师评分失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	default:
		if req.Version != mark.Version {
			return nil, pkgerrors.ErrOptimisticLock
		}
		if req.GroupMark != nil {
			mark.GroupMark = req.GroupMark
		}
		if req.Rating != nil {
			mark.Rating = req.Rating
		}
		mark.GroupID = group.GroupID
		mark.UpdatedBy = &caller.UserID
		if err := s.repo.Mark.Update(ctx, mark); err != nil {
			if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
				s.logger.Error("更新教师评分失败", zap.String("student_id", studentID), zap.Error(err))
			}
			return nil, err
		}
	}

	return &dto.MarkResponse{
		StudentID: mark.StudentID,
		GroupID:   mark.GroupID,
		GroupMark: mark.GroupMark,
		Rating:    mark.Rating,
		Version:   mark.Version,
	}, nil
}

// ── 辅助 ──

// studentGroup 调用者必须是已分组的学生
func (s *reviewService) studentGroup(ctx context.Context, caller Caller) (*model.User, *model.Group, error) {
	if caller.Role != model.RoleStudent {
		return nil, nil, ErrOnlyStudents
	}
	user, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, nil, err
	}
	if user.GroupID == nil {
		return nil, nil, ErrNotInGroup
	}
	group, err := s.repo.Group.GetByID(ctx, *user.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotInGroup
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, nil, err
	}
	return user, group, nil
}

// loadViewableGroup 负责教师、管理员或组内学生可查看
func (s *reviewService) loadViewableGroup(ctx context.Context, groupID string, caller Caller) (*model.Group, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.String("id", groupID), zap.Error(err))
		return nil, err
	}
	if caller.IsLecturer() {
		if !canManageSubject(group.Subject, caller) {
			return nil, ErrForbidden
		}
		return group, nil
	}
	if !isMember(group, caller.UserID) {
		return nil, ErrForbidden
	}
	return group, nil
}

func (s *reviewService) setting(ctx context.Context, subjectID string) (*model.ReviewSetting, error) {
	setting, err := s.repo.Setting.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询互评设置失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	return setting, nil
}

// ensureOpen 截止时间已过则拒绝提交；未设置截止时间时始终开放
func (s *reviewService) ensureOpen(ctx context.Context, group *model.Group) error {
	setting, err := s.setting(ctx, group.SubjectID)
	if err != nil {
		return err
	}
	if setting.Closed(s.now()) {
		return ErrReviewWindowClosed
	}
	return nil
}

// inTx 在事务中执行 fn，出错或 panic 时回滚
// 单元测试中 BeginTx 返回 nil，fn 直接作用于原 Repository
func (s *reviewService) inTx(ctx context.Context, fn func(txRepo *repository.Repository) error) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(s.repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}

// afterWrite 重新计算完成度；本次写入使小组全部完成时通知负责教师
func (s *reviewService) afterWrite(ctx context.Context, group *model.Group, wasCompleted bool) bool {
	after, err := s.loadCohort(ctx, group)
	if err != nil {
		s.logger.Warn("重新计算完成度失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return false
	}
	if after.completion.AllCompleted && !wasCompleted {
		s.notifyCompleted(ctx, group)
	}
	return after.completion.AllCompleted
}

// notifyCompleted 发送失败只记录日志
func (s *reviewService) notifyCompleted(ctx context.Context, group *model.Group) {
	if s.mailer == nil || group.Subject == nil {
		return
	}
	lecturer, err := s.repo.User.GetByID(ctx, group.Subject.LecturerID)
	if err != nil {
		s.logger.Warn("查询负责教师失败，跳过完成通知", zap.String("group_id", group.GroupID), zap.Error(err))
		return
	}

	subject := fmt.Sprintf("[互评] %s / %s 已全部完成", group.Subject.Name, group.Name)
	body := fmt.Sprintf(
		"%s 老师您好：\n\n课程 %s 的小组 %s 全部 %d 名成员已完成互评与自评。\n查看结果：%s/api/v1/groups/%s/results\n",
		lecturer.Name, group.Subject.Name, group.Name, len(group.Members), s.baseURL, group.GroupID,
	)
	if err := s.mailer.Send(ctx, []string{lecturer.Email}, subject, body); err != nil {
		s.logger.Warn("发送完成通知失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return
	}
	s.logger.Info("已发送完成通知", zap.String("group_id", group.GroupID), zap.String("to", lecturer.Email))
}

func memberIDs(group *model.Group) []string {
	ids := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func isMember(group *model.Group, userID string) bool {
	for _, m := range group.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func toSelfAssessmentResponse(a *model.SelfAssessment, name string) dto.SelfAssessmentResponse {
	if name == "" && a.Student != nil {
		name = a.Student.Name
	}
	return dto.SelfAssessmentResponse{
		StudentID:   a.StudentID,
		StudentName: name,
		Summary:     a.Summary,
		Challenges:  a.Challenges,
		Different:   a.Different,
		Role:        a.Role,
		Feedback:    a.Feedback,
		SubmittedAt: formatTime(a.CreatedAt),
	}
}
