//go:build integration

package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skyler-Tan/G17--Mini-IT-project/config"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/review"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/service"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/database"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/mailer"
)

var errInjectedWrite = errors.New("写入匿名评语失败（测试注入）")

// openFailingDB 独立连接，匿名评语写入一律失败
// 回调只注册在该连接上，不影响其他测试
func openFailingDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=peer password=peer_password dbname=peer_review_test sslmode=disable TimeZone=UTC"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("无法连接测试数据库: %v", err)
	}
	if err := database.Migrate(db, "postgres", zap.NewNop()); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	err = db.Callback().Create().Before("gorm:create").Register("test:fail_anonymous_comment", func(tx *gorm.DB) {
		if tx.Statement.Table == "anonymous_comments" {
			tx.AddError(errInjectedWrite)
		}
	})
	if err != nil {
		t.Fatalf("注册回调失败: %v", err)
	}
	return db
}

func seedIntegrationCohort(t *testing.T, db *gorm.DB, n int) (*model.Group, []model.User, func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	lecturer := &model.User{
		Name:         "测试教师",
		Email:        fmt.Sprintf("svc-lect%d@example.edu", suffix),
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleLecturer,
	}
	if err := db.WithContext(ctx).Create(lecturer).Error; err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}
	subject := &model.Subject{Name: fmt.Sprintf("事务课程-%d", suffix), LecturerID: lecturer.UserID}
	if err := db.WithContext(ctx).Create(subject).Error; err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	group := &model.Group{SubjectID: subject.SubjectID, Name: "G1"}
	if err := db.WithContext(ctx).Create(group).Error; err != nil {
		t.Fatalf("创建小组失败: %v", err)
	}

	var students []model.User
	for i := 0; i < n; i++ {
		num := fmt.Sprintf("T%d-%d", suffix, i)
		s := model.User{
			Name:          fmt.Sprintf("学生%d", i),
			StudentNumber: &num,
			Email:         fmt.Sprintf("svc-s%d-%d@example.edu", suffix, i),
			PasswordHash:  "$2a$10$placeholder",
			Role:          model.RoleStudent,
			GroupID:       &group.GroupID,
		}
		if err := db.WithContext(ctx).Create(&s).Error; err != nil {
			t.Fatalf("创建学生失败: %v", err)
		}
		students = append(students, s)
	}

	cleanup := func() {
		db.Where("subject_id = ?", subject.SubjectID).Delete(&model.Subject{})
		for _, s := range students {
			db.Where("user_id = ?", s.UserID).Delete(&model.User{})
		}
		db.Where("user_id = ?", lecturer.UserID).Delete(&model.User{})
	}
	return group, students, cleanup
}

func entriesForPeers(reviewer model.User, students []model.User, score int) []review.Entry {
	var out []review.Entry
	for _, s := range students {
		if s.UserID == reviewer.UserID {
			continue
		}
		out = append(out, review.Entry{RevieweeID: s.UserID, Score: score, Comment: "评语"})
	}
	return out
}

func TestReviewService_Submit_FailedResubmitKeepsPreviousReviews(t *testing.T) {
	db := openFailingDB(t)
	group, students, cleanup := seedIntegrationCohort(t, db, 4)
	defer cleanup()

	cfg := &config.Config{}
	cfg.Review.BlendPolicy = review.PolicyThreeTerm
	repo := repository.NewRepository(db)
	svc := service.NewReviewService(cfg, repo, mailer.NewMailer(&cfg.Mail, zap.NewNop()), zap.NewNop())

	ctx := context.Background()
	reviewer := students[0]
	caller := service.Caller{UserID: reviewer.UserID, Role: model.RoleStudent}

	if _, err := svc.Submit(ctx, caller, entriesForPeers(reviewer, students, 4), ""); err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}

	// 删除与插入都已执行，匿名评语写入失败，整个事务应回滚
	_, err := svc.Submit(ctx, caller, entriesForPeers(reviewer, students, 2), "匿名")
	if !errors.Is(err, errInjectedWrite) {
		t.Fatalf("期望注入的写入错误，实际: %v", err)
	}

	got, err := repo.Review.ListByReviewer(ctx, reviewer.UserID)
	if err != nil {
		t.Fatalf("查询互评失败: %v", err)
	}
	if len(got) != len(students)-1 {
		t.Fatalf("回滚后应保留原有 %d 条互评，实际=%d", len(students)-1, len(got))
	}
	for _, r := range got {
		if r.Score != 4 {
			t.Errorf("期望保留首次提交的分数 4，实际=%d", r.Score)
		}
	}

	comments, err := repo.AnonymousComment.ListByGroup(ctx, group.GroupID)
	if err != nil {
		t.Fatalf("查询匿名评语失败: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("失败的提交不应留下匿名评语，实际=%d", len(comments))
	}
}
