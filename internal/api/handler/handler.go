package handler

import "github.com/Skyler-Tan/G17--Mini-IT-project/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	Subject *SubjectHandler
	Group   *GroupHandler
	Student *StudentHandler
	Review  *ReviewHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Subject: NewSubjectHandler(svc.Subject),
		Group:   NewGroupHandler(svc.Group),
		Student: NewStudentHandler(svc.Student),
		Review:  NewReviewHandler(svc.Review),
		Export:  NewExportHandler(svc.Export),
	}
}
