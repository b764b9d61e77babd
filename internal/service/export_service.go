package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/config"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/dto"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrResultsNotPublished = errors.New("小组尚未全部完成，结果未发布")
	ErrNoDeadline          = errors.New("该课程未设置互评截止时间")
	ErrExportGenerateFail  = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
//   - 结果导出为 Excel (.xlsx)：结果 / 评语 / 自评 三个 Sheet
//   - 互评截止时间导出为 iCalendar (.ics) 单个事件
//   - 内容以字节返回，由 Handler 设置响应头
type ExportService interface {
	ExportResults(ctx context.Context, groupID string, caller Caller) (*bytes.Buffer, string, error)
	DeadlineCalendar(ctx context.Context, subjectID string) ([]byte, string, error)
}

type exportService struct {
	repo    *repository.Repository
	reviews ReviewService
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, reviews ReviewService, logger *zap.Logger) ExportService {
	return &exportService{
		repo:    repo,
		reviews: reviews,
		baseURL: strings.TrimRight(cfg.Server.BaseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportResults：导出小组结果为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportResults(ctx context.Context, groupID string, caller Caller) (*bytes.Buffer, string, error) {
	if !caller.IsLecturer() {
		return nil, "", ErrForbidden
	}

	results, err := s.reviews.Results(ctx, groupID, caller)
	if err != nil {
		return nil, "", err
	}
	if results.Status != dto.ResultStatusPublished {
		return nil, "", ErrResultsNotPublished
	}

	groupName := groupID
	if group, err := s.repo.Group.GetByID(ctx, groupID); err == nil {
		groupName = group.Name
		if group.Subject != nil {
			groupName = group.Subject.Name + "_" + group.Name
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Sheet 1: 结果
	const resultSheet = "结果"
	idx, _ := f.NewSheet(resultSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	writeHeader(f, resultSheet, headerStyle, "学生", "平均互评分", "收到评价数", "小组分", "等级", "最终成绩")
	f.SetColWidth(resultSheet, "A", "A", 20)
	f.SetColWidth(resultSheet, "B", "F", 14)
	for i, row := range results.Rows {
		r := i + 2
		f.SetCellValue(resultSheet, cell("A", r), row.Name)
		setOptional(f, resultSheet, cell("B", r), row.AvgPeerScore)
		f.SetCellValue(resultSheet, cell("C", r), row.ReviewCount)
		setOptional(f, resultSheet, cell("D", r), row.GroupMark)
		if row.Rating != nil {
			f.SetCellValue(resultSheet, cell("E", r), *row.Rating)
		} else {
			f.SetCellValue(resultSheet, cell("E", r), "-")
		}
		setOptional(f, resultSheet, cell("F", r), row.FinalMark)
	}

	// Sheet 2: 评语
	const commentSheet = "评语"
	f.NewSheet(commentSheet)
	writeHeader(f, commentSheet, headerStyle, "被评价人", "评价人", "评语")
	f.SetColWidth(commentSheet, "A", "B", 20)
	f.SetColWidth(commentSheet, "C", "C", 60)
	r := 2
	for _, row := range results.Rows {
		for _, c := range row.Comments {
			f.SetCellValue(commentSheet, cell("A", r), row.Name)
			f.SetCellValue(commentSheet, cell("B", r), c.ReviewerName)
			f.SetCellValue(commentSheet, cell("C", r), c.Comment)
			r++
		}
	}
	for _, text := range results.AnonymousComments {
		f.SetCellValue(commentSheet, cell("A", r), "（小组）")
		f.SetCellValue(commentSheet, cell("B", r), "匿名")
		f.SetCellValue(commentSheet, cell("C", r), text)
		r++
	}

	// Sheet 3: 自评
	const selfSheet = "自评"
	f.NewSheet(selfSheet)
	writeHeader(f, selfSheet, headerStyle, "学生", "总结", "遇到的困难", "改进之处", "承担角色", "反馈")
	f.SetColWidth(selfSheet, "A", "A", 20)
	f.SetColWidth(selfSheet, "B", "F", 40)
	for i, a := range results.SelfAssessments {
		r := i + 2
		f.SetCellValue(selfSheet, cell("A", r), a.StudentName)
		f.SetCellValue(selfSheet, cell("B", r), a.Summary)
		f.SetCellValue(selfSheet, cell("C", r), a.Challenges)
		f.SetCellValue(selfSheet, cell("D", r), a.Different)
		f.SetCellValue(selfSheet, cell("E", r), a.Role)
		if a.Feedback != nil {
			f.SetCellValue(selfSheet, cell("F", r), *a.Feedback)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("互评结果_%s.xlsx", groupName)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// DeadlineCalendar：互评截止时间日历
// ═══════════════════════════════════════════════════════════

func (s *exportService) DeadlineCalendar(ctx context.Context, subjectID string) ([]byte, string, error) {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSubjectNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", subjectID), zap.Error(err))
		return nil, "", err
	}
	if subject.Setting == nil || subject.Setting.Deadline == nil {
		return nil, "", ErrNoDeadline
	}
	deadline := subject.Setting.Deadline.UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//peer-review//deadline//ZH")

	event := cal.AddEvent(fmt.Sprintf("deadline-%s@peer-review", subject.SubjectID))
	event.SetDtStampTime(s.now().UTC())
	event.SetStartAt(deadline.Add(-30 * time.Minute))
	event.SetEndAt(deadline)
	event.SetSummary(fmt.Sprintf("%s 互评截止", subject.Name))
	desc := "请在截止前完成对全部组员的互评与自评。"
	if criteria := strings.TrimSpace(subject.Setting.Criteria); criteria != "" {
		desc += "\n评分标准：" + criteria
	}
	event.SetDescription(desc)
	if s.baseURL != "" {
		event.SetURL(s.baseURL + "/api/v1/reviews/form")
	}

	filename := fmt.Sprintf("deadline_%s.ics", subject.SubjectID)
	return []byte(cal.Serialize()), filename, nil
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, style int, titles ...string) {
	for i, t := range titles {
		f.SetCellValue(sheet, cell(colName(i), 1), t)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(titles)-1), 1), style)
}

func setOptional(f *excelize.File, sheet, axis string, v *float64) {
	if v == nil {
		f.SetCellValue(sheet, axis, "-")
		return
	}
	f.SetCellValue(sheet, axis, *v)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
