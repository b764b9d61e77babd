package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Skyler-Tan/G17--Mini-IT-project/config"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/review"
	pkgerrors "github.com/Skyler-Tan/G17--Mini-IT-project/pkg/errors"
)

// ── 测试辅助 ──

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func setupTestReviewService(policy string) (*reviewService, *mockStore, *mockMailer) {
	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:8080"},
		Review: config.ReviewConfig{BlendPolicy: policy},
	}
	repo, st := newMockRepository()
	st.seedLecturer("lecturer-1", "王老师")
	st.seedCohort("lecturer-1", 3)
	mail := &mockMailer{}
	svc := NewReviewService(cfg, repo, mail, zap.NewNop()).(*reviewService)
	svc.now = func() time.Time { return testNow }
	return svc, st, mail
}

func studentCaller(id string) Caller {
	return Caller{UserID: id, Role: model.RoleStudent}
}

// scoreMatrix[reviewer][reviewee]
var scoreMatrix = map[string]map[string]int{
	"student-1": {"student-2": 3, "student-3": 3},
	"student-2": {"student-1": 4, "student-3": 2},
	"student-3": {"student-1": 5, "student-2": 4},
}

func entriesFor(reviewer string) []review.Entry {
	var out []review.Entry
	for _, reviewee := range []string{"student-1", "student-2", "student-3"} {
		score, ok := scoreMatrix[reviewer][reviewee]
		if !ok {
			continue
		}
		out = append(out, review.Entry{
			RevieweeID: reviewee,
			Score:      score,
			Comment:    reviewer + " 对 " + reviewee + " 的评语",
		})
	}
	return out
}

func selfAssessmentReq() *dto.SelfAssessmentRequest {
	return &dto.SelfAssessmentRequest{
		Summary:    "完成了后端接口",
		Challenges: "时间紧张",
		Different:  "更早开始测试",
		Role:       "后端开发",
	}
}

// completeCohort 所有学生提交互评与自评
func completeCohort(t *testing.T, svc *reviewService) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []string{"student-1", "student-2", "student-3"} {
		if _, err := svc.Submit(ctx, studentCaller(id), entriesFor(id), ""); err != nil {
			t.Fatalf("%s 提交互评失败: %v", id, err)
		}
		if _, err := svc.SubmitSelfAssessment(ctx, studentCaller(id), selfAssessmentReq()); err != nil {
			t.Fatalf("%s 提交自评失败: %v", id, err)
		}
	}
}

func findRow(rows []dto.ResultRow, id string) *dto.ResultRow {
	for i := range rows {
		if rows[i].StudentID == id {
			return &rows[i]
		}
	}
	return nil
}

// ── Form ──

func TestReviewService_Form_PrefillsPriorSubmission(t *testing.T) {
	svc, _, _ := setupTestReviewService("")
	ctx := context.Background()

	form, err := svc.Form(ctx, studentCaller("student-2"))
	if err != nil {
		t.Fatalf("获取表单失败: %v", err)
	}
	if len(form.Members) != 2 {
		t.Fatalf("期望 2 名待评价组员（不含自己），实际 %d", len(form.Members))
	}
	for _, m := range form.Members {
		if m.StudentID == "student-2" {
			t.Error("表单不应包含自己")
		}
		if m.Score != nil {
			t.Error("首次打开表单不应有预填分数")
		}
	}

	_, _ = svc.Submit(ctx, studentCaller("student-2"), entriesFor("student-2"), "")
	form, _ = svc.Form(ctx, studentCaller("student-2"))
	for _, m := range form.Members {
		if m.Score == nil || *m.Score != scoreMatrix["student-2"][m.StudentID] {
			t.Errorf("期望预填 %s 的分数，实际 %v", m.StudentID, m.Score)
		}
	}
}

func TestReviewService_Form_RequiresGroupedStudent(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	st.users["loner"] = &model.User{UserID: "loner", Role: model.RoleStudent}

	if _, err := svc.Form(context.Background(), lecturerCaller); !errors.Is(err, ErrOnlyStudents) {
		t.Errorf("期望 ErrOnlyStudents，实际 %v", err)
	}
	if _, err := svc.Form(context.Background(), studentCaller("loner")); !errors.Is(err, ErrNotInGroup) {
		t.Errorf("期望 ErrNotInGroup，实际 %v", err)
	}
}

// ── Submit ──

func TestReviewService_Submit_Validation(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	ctx := context.Background()

	cases := []struct {
		name    string
		entries []review.Entry
		field   string
	}{
		{"缺少组员", []review.Entry{{RevieweeID: "student-2", Score: 3}}, "reviews"},
		{"评价自己", []review.Entry{{RevieweeID: "student-1", Score: 3}, {RevieweeID: "student-2", Score: 3}}, "reviewee"},
		{"分数越界", []review.Entry{{RevieweeID: "student-2", Score: 6}, {RevieweeID: "student-3", Score: 3}}, "score"},
		{"非本组成员", []review.Entry{{RevieweeID: "student-2", Score: 3}, {RevieweeID: "outsider", Score: 3}}, "reviewee"},
		{"重复评价", []review.Entry{{RevieweeID: "student-2", Score: 3}, {RevieweeID: "student-2", Score: 4}}, "reviewee"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, studentCaller("student-1"), tc.entries, "")
			var verr *review.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("期望 ValidationError，实际 %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("期望字段 %s，实际 %s", tc.field, verr.Field)
			}
		})
	}
	if len(st.reviews) != 0 {
		t.Errorf("校验失败时不应写入任何互评，实际 %d 条", len(st.reviews))
	}
}

func TestReviewService_Submit_ReplacesPrevious(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp, err := svc.Submit(ctx, studentCaller("student-1"), entriesFor("student-1"), "")
		if err != nil {
			t.Fatalf("第 %d 次提交失败: %v", i+1, err)
		}
		if resp.Stored != 2 {
			t.Errorf("期望写入 2 条，实际 %d", resp.Stored)
		}
	}
	if len(st.reviews) != 2 {
		t.Errorf("重复提交后应只保留 N-1=2 条互评，实际 %d", len(st.reviews))
	}
}

func TestReviewService_Submit_WriteFailureReturnsError(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	st.batchCreateErr = errors.New("db down")

	if _, err := svc.Submit(context.Background(), studentCaller("student-1"), entriesFor("student-1"), ""); err == nil {
		t.Error("写入失败时应返回错误")
	}
}

func TestReviewService_Submit_AfterDeadline(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	past := testNow.Add(-time.Minute)
	st.settings["subject-1"] = &model.ReviewSetting{SubjectID: "subject-1", Deadline: &past}

	_, err := svc.Submit(context.Background(), studentCaller("student-1"), entriesFor("student-1"), "")
	if !errors.Is(err, ErrReviewWindowClosed) {
		t.Errorf("期望 ErrReviewWindowClosed，实际 %v", err)
	}
	_, err = svc.SubmitSelfAssessment(context.Background(), studentCaller("student-1"), selfAssessmentReq())
	if !errors.Is(err, ErrReviewWindowClosed) {
		t.Errorf("自评同样应被拒绝，实际 %v", err)
	}
}

func TestReviewService_Submit_BeforeDeadline(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	future := testNow.Add(time.Hour)
	st.settings["subject-1"] = &model.ReviewSetting{SubjectID: "subject-1", Deadline: &future}

	if _, err := svc.Submit(context.Background(), studentCaller("student-1"), entriesFor("student-1"), ""); err != nil {
		t.Errorf("截止前提交应成功，实际 %v", err)
	}
}

// ── SelfAssessment ──

func TestReviewService_SelfAssessment(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	ctx := context.Background()

	if _, err := svc.GetSelfAssessment(ctx, studentCaller("student-1")); !errors.Is(err, ErrSelfAssessmentNotFound) {
		t.Errorf("期望 ErrSelfAssessmentNotFound，实际 %v", err)
	}

	req := selfAssessmentReq()
	req.Role = "   "
	_, err := svc.SubmitSelfAssessment(ctx, studentCaller("student-1"), req)
	var verr *review.ValidationError
	if !errors.As(err, &verr) || verr.Field != "role" {
		t.Errorf("期望 role 字段校验失败，实际 %v", err)
	}

	req = selfAssessmentReq()
	req.Feedback = "希望多一些代码评审"
	if _, err := svc.SubmitSelfAssessment(ctx, studentCaller("student-1"), req); err != nil {
		t.Fatalf("提交自评失败: %v", err)
	}
	req.Summary = "第二版总结"
	if _, err := svc.SubmitSelfAssessment(ctx, studentCaller("student-1"), req); err != nil {
		t.Fatalf("再次提交自评失败: %v", err)
	}
	if len(st.selfs) != 1 {
		t.Errorf("每个学生只保留一份自评，实际 %d", len(st.selfs))
	}

	got, err := svc.GetSelfAssessment(ctx, studentCaller("student-1"))
	if err != nil {
		t.Fatalf("读取自评失败: %v", err)
	}
	if got.Summary != "第二版总结" || got.Feedback == nil {
		t.Errorf("自评内容不正确: %+v", got)
	}
}

// ── Completion ──

func TestReviewService_Completion(t *testing.T) {
	svc, _, _ := setupTestReviewService("")
	ctx := context.Background()

	_, _ = svc.Submit(ctx, studentCaller("student-1"), entriesFor("student-1"), "")
	_, _ = svc.SubmitSelfAssessment(ctx, studentCaller("student-1"), selfAssessmentReq())
	_, _ = svc.Submit(ctx, studentCaller("student-2"), entriesFor("student-2"), "")

	resp, err := svc.Completion(ctx, "group-1", lecturerCaller)
	if err != nil {
		t.Fatalf("查询完成度失败: %v", err)
	}
	if resp.RequiredReviews != 2 || resp.Total != 3 {
		t.Errorf("期望 required=2 total=3，实际 %d/%d", resp.RequiredReviews, resp.Total)
	}
	if resp.CompletedCount != 1 || resp.AllCompleted {
		t.Errorf("期望仅 1 人完成，实际 %d（all=%v）", resp.CompletedCount, resp.AllCompleted)
	}

	if _, err := svc.Completion(ctx, "group-1", Caller{UserID: "lecturer-2", Role: model.RoleLecturer}); !errors.Is(err, ErrForbidden) {
		t.Errorf("非负责教师期望 ErrForbidden，实际 %v", err)
	}
}

func TestReviewService_NotifiesLecturerOnce(t *testing.T) {
	svc, _, mail := setupTestReviewService("")
	ctx := context.Background()

	completeCohort(t, svc)
	if len(mail.sent) != 1 {
		t.Fatalf("全部完成时应发送 1 封通知，实际 %d", len(mail.sent))
	}
	if mail.sent[0].to[0] != "lecturer-1@example.edu" {
		t.Errorf("通知应发送给负责教师，实际 %v", mail.sent[0].to)
	}
	if !strings.Contains(mail.sent[0].body, "/api/v1/groups/group-1/results") {
		t.Errorf("通知内容应包含结果链接: %s", mail.sent[0].body)
	}

	// 完成后重新提交不再通知
	resp, err := svc.Submit(ctx, studentCaller("student-1"), entriesFor("student-1"), "")
	if err != nil {
		t.Fatalf("重新提交失败: %v", err)
	}
	if !resp.AllCompleted {
		t.Error("重新提交后小组仍应为全部完成")
	}
	if len(mail.sent) != 1 {
		t.Errorf("重新提交不应再次通知，实际 %d 封", len(mail.sent))
	}
}

func TestReviewService_MailFailureDoesNotFailSubmit(t *testing.T) {
	svc, _, mail := setupTestReviewService("")
	mail.err = errors.New("smtp unavailable")

	completeCohort(t, svc)
}

// ── Results ──

func TestReviewService_Results_PendingUntilComplete(t *testing.T) {
	svc, _, _ := setupTestReviewService("")
	ctx := context.Background()

	_, _ = svc.Submit(ctx, studentCaller("student-1"), entriesFor("student-1"), "匿名建议")
	_, _ = svc.SubmitSelfAssessment(ctx, studentCaller("student-1"), selfAssessmentReq())

	resp, err := svc.Results(ctx, "group-1", lecturerCaller)
	if err != nil {
		t.Fatalf("查询结果失败: %v", err)
	}
	if resp.Status != dto.ResultStatusPending {
		t.Errorf("期望 pending，实际 %s", resp.Status)
	}
	if len(resp.Rows) != 0 || len(resp.AnonymousComments) != 0 {
		t.Errorf("pending 时不应返回任何结果行或匿名评语: %+v", resp)
	}
	if resp.CompletedCount != 1 || resp.Total != 3 {
		t.Errorf("期望完成度 1/3，实际 %d/%d", resp.CompletedCount, resp.Total)
	}
}

func TestReviewService_Results_Published(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	ctx := context.Background()

	completeCohort(t, svc)
	_, _ = svc.Submit(ctx, studentCaller("student-2"), entriesFor("student-2"), "组内沟通可以更顺畅")

	gm, rating := 80.0, 4
	st.marks["student-1"] = &model.LecturerMark{StudentID: "student-1", GroupID: "group-1", GroupMark: &gm, Rating: &rating, Version: 1}

	resp, err := svc.Results(ctx, "group-1", lecturerCaller)
	if err != nil {
		t.Fatalf("查询结果失败: %v", err)
	}
	if resp.Status != dto.ResultStatusPublished || resp.Policy != review.PolicyThreeTerm {
		t.Fatalf("期望 published/three_term，实际 %s/%s", resp.Status, resp.Policy)
	}
	if len(resp.Rows) != 3 {
		t.Fatalf("期望 3 行结果，实际 %d", len(resp.Rows))
	}

	s1 := findRow(resp.Rows, "student-1")
	if s1.AvgPeerScore == nil || *s1.AvgPeerScore != 4.5 {
		t.Errorf("student-1 期望平均分 4.5，实际 %v", s1.AvgPeerScore)
	}
	// 80*0.5 + 80*0.25*0.9 + 80*0.25*0.8 = 74
	if s1.FinalMark == nil || *s1.FinalMark != 74 {
		t.Errorf("student-1 期望最终成绩 74，实际 %v", s1.FinalMark)
	}
	if len(s1.Comments) != 2 {
		t.Errorf("教师应看到全部评语，实际 %d", len(s1.Comments))
	}

	s2 := findRow(resp.Rows, "student-2")
	if s2.FinalMark != nil {
		t.Errorf("未评分学生的最终成绩应为空，实际 %v", *s2.FinalMark)
	}
	if s2.AvgPeerScore == nil || *s2.AvgPeerScore != 3.5 {
		t.Errorf("student-2 期望平均分 3.5，实际 %v", s2.AvgPeerScore)
	}

	if len(resp.AnonymousComments) != 1 || resp.AnonymousComments[0] != "组内沟通可以更顺畅" {
		t.Errorf("匿名评语不正确: %v", resp.AnonymousComments)
	}
	if len(resp.SelfAssessments) != 3 {
		t.Errorf("教师应看到全部自评，实际 %d", len(resp.SelfAssessments))
	}
}

func TestReviewService_Results_StudentSeesOnlyOwnComments(t *testing.T) {
	svc, _, _ := setupTestReviewService("")
	ctx := context.Background()
	completeCohort(t, svc)

	resp, err := svc.Results(ctx, "group-1", studentCaller("student-2"))
	if err != nil {
		t.Fatalf("查询结果失败: %v", err)
	}
	for _, row := range resp.Rows {
		if row.StudentID == "student-2" && len(row.Comments) != 2 {
			t.Errorf("学生应看到自己收到的评语，实际 %d", len(row.Comments))
		}
		if row.StudentID != "student-2" && len(row.Comments) != 0 {
			t.Errorf("学生不应看到 %s 收到的评语", row.StudentID)
		}
	}
	if len(resp.SelfAssessments) != 1 || resp.SelfAssessments[0].StudentID != "student-2" {
		t.Errorf("学生只能看到自己的自评，实际 %+v", resp.SelfAssessments)
	}

	if _, err := svc.Results(ctx, "group-1", studentCaller("outsider")); !errors.Is(err, ErrForbidden) {
		t.Errorf("非组员期望 ErrForbidden，实际 %v", err)
	}
}

func TestReviewService_Results_MeanNormalized(t *testing.T) {
	svc, st, _ := setupTestReviewService(review.PolicyMeanNormalized)
	completeCohort(t, svc)

	gm, rating := 80.0, 5
	st.marks["student-1"] = &model.LecturerMark{StudentID: "student-1", GroupID: "group-1", GroupMark: &gm, Rating: &rating, Version: 1}

	resp, err := svc.Results(context.Background(), "group-1", lecturerCaller)
	if err != nil {
		t.Fatalf("查询结果失败: %v", err)
	}
	if resp.Policy != review.PolicyMeanNormalized {
		t.Errorf("期望 mean_normalized，实际 %s", resp.Policy)
	}
	// 平均分 4.5/3.5/2.5，小组均值 3.5；4.5*3/3.5 = 3.857...
	// peer = 80*3.857/3 = 102.86 → 上限 100；final = 83 + 0.17*80 = 96.6
	s1 := findRow(resp.Rows, "student-1")
	if s1.FinalMark == nil || *s1.FinalMark != 96.6 {
		t.Errorf("期望最终成绩 96.6，实际 %v", s1.FinalMark)
	}
}

// ── ListReviews ──

func TestReviewService_ListReviews(t *testing.T) {
	svc, _, _ := setupTestReviewService("")
	ctx := context.Background()
	_, _ = svc.Submit(ctx, studentCaller("student-1"), entriesFor("student-1"), "")

	list, err := svc.ListReviews(ctx, "group-1", lecturerCaller)
	if err != nil {
		t.Fatalf("查询互评失败: %v", err)
	}
	if len(list) != 2 || list[0].ReviewerName != "学生1" {
		t.Errorf("互评列表不正确: %+v", list)
	}
	if _, err := svc.ListReviews(ctx, "group-1", studentCaller("student-1")); !errors.Is(err, ErrForbidden) {
		t.Errorf("学生期望 ErrForbidden，实际 %v", err)
	}
}

// ── SetMark ──

func TestReviewService_SetMark_OptimisticLock(t *testing.T) {
	svc, st, _ := setupTestReviewService("")
	ctx := context.Background()
	gm := 75.0
	rating := 3

	if _, err := svc.SetMark(ctx, "group-1", "student-1", &dto.SetMarkRequest{GroupMark: &gm, Version: 1}, lecturerCaller); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("首次评分版本号不为 0 时期望 ErrOptimisticLock，实际 %v", err)
	}

	created, err := svc.SetMark(ctx, "group-1", "student-1", &dto.SetMarkRequest{GroupMark: &gm, Version: 0}, lecturerCaller)
	if err != nil {
		t.Fatalf("创建评分失败: %v", err)
	}
	if created.Version != 1 || created.Rating != nil {
		t.Errorf("期望 version=1 且等级为空，实际 %+v", created)
	}

	updated, err := svc.SetMark(ctx, "group-1", "student-1", &dto.SetMarkRequest{Rating: &rating, Version: 1}, lecturerCaller)
	if err != nil {
		t.Fatalf("更新评分失败: %v", err)
	}
	if updated.Version != 2 || updated.GroupMark == nil || *updated.GroupMark != 75 || *updated.Rating != 3 {
		t.Errorf("部分更新应保留原有小组分: %+v", updated)
	}

	if _, err := svc.SetMark(ctx, "group-1", "student-1", &dto.SetMarkRequest{Rating: &rating, Version: 1}, lecturerCaller); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("过期版本号期望 ErrOptimisticLock，实际 %v", err)
	}
	if st.marks["student-1"].Version != 2 {
		t.Errorf("冲突时不应修改已保存的评分，实际 version=%d", st.marks["student-1"].Version)
	}
}

func TestReviewService_SetMark_Permissions(t *testing.T) {
	svc, _, _ := setupTestReviewService("")
	ctx := context.Background()
	gm := 75.0

	if _, err := svc.SetMark(ctx, "group-1", "student-1", &dto.SetMarkRequest{GroupMark: &gm}, studentCaller("student-2")); !errors.Is(err, ErrForbidden) {
		t.Errorf("学生期望 ErrForbidden，实际 %v", err)
	}
	if _, err := svc.SetMark(ctx, "group-1", "outsider", &dto.SetMarkRequest{GroupMark: &gm}, lecturerCaller); !errors.Is(err, ErrStudentNotInGroup) {
		t.Errorf("期望 ErrStudentNotInGroup，实际 %v", err)
	}
	if _, err := svc.SetMark(ctx, "missing", "student-1", &dto.SetMarkRequest{GroupMark: &gm}, adminCaller); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("期望 ErrGroupNotFound，实际 %v", err)
	}
}
