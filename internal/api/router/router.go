package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skyler-Tan/G17--Mini-IT-project/config"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/api/handler"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/api/middleware"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/jwt"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时提交接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("注册自定义校验器失败", zap.Error(err))
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	lecturerOnly := middleware.RoleAuth(model.RoleLecturer, model.RoleAdmin)
	studentOnly := middleware.RoleAuth(model.RoleStudent)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)
	submitLimit := middleware.RateLimit(limiter, cfg.Review.RateLimit, cfg.Review.RateLimitWindow, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr))
		{
			authorized.GET("/auth/me", h.Auth.Me)

			// 课程模块
			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Subject.ListSubjects)
				subjects.POST("", lecturerOnly, h.Subject.CreateSubject)
				subjects.DELETE("/:id", lecturerOnly, h.Subject.DeleteSubject)
				subjects.GET("/:id/settings", h.Subject.GetSetting)
				subjects.PUT("/:id/settings", lecturerOnly, h.Subject.UpdateSetting)
				subjects.GET("/:id/deadline.ics", h.Export.DeadlineCalendar)
				subjects.GET("/:id/groups", lecturerOnly, h.Group.ListGroups)
				subjects.POST("/:id/groups", lecturerOnly, h.Group.CreateGroup)
			}

			// 小组模块（成员或负责教师，Service 层鉴权）
			groups := authorized.Group("/groups")
			{
				groups.GET("/:id", lecturerOnly, h.Group.GetGroup)
				groups.DELETE("/:id", lecturerOnly, h.Group.DeleteGroup)
				groups.PUT("/:id/members", lecturerOnly, h.Group.SetMembers)
				groups.GET("/:id/completion", h.Review.Completion)
				groups.GET("/:id/results", h.Review.Results)
				groups.GET("/:id/results/export", lecturerOnly, h.Export.ExportResults)
				groups.GET("/:id/reviews", lecturerOnly, h.Review.ListReviews)
				groups.PUT("/:id/marks/:student_id", lecturerOnly, h.Review.SetMark)
			}

			// 学生模块
			students := authorized.Group("/students")
			{
				students.GET("", lecturerOnly, h.Student.ListStudents)
				students.POST("", lecturerOnly, h.Student.CreateStudent)
				students.DELETE("/:id", adminOnly, h.Student.DeleteStudent)
			}

			// 互评与自评（学生）
			authorized.GET("/reviews/form", studentOnly, h.Review.Form)
			authorized.POST("/reviews", studentOnly, submitLimit, h.Review.Submit)
			authorized.GET("/self-assessment", studentOnly, h.Review.GetSelfAssessment)
			authorized.PUT("/self-assessment", studentOnly, submitLimit, h.Review.SubmitSelfAssessment)
		}
	}

	return r
}
