// Package review 互评结果计算：完成度判定、平均分汇总与最终成绩合成。
// 包内均为纯函数，不访问数据库。
package review

// Review 一条互评记录（reviewer → reviewee）
type Review struct {
	ReviewerID string
	RevieweeID string
	Score      int
	Comment    string
}

// CompletionStatus 单个学生的完成情况
type CompletionStatus struct {
	StudentID         string `json:"student_id"`
	ReviewsGiven      int    `json:"reviews_given"`
	HasSelfAssessment bool   `json:"has_self_assessment"`
	Completed         bool   `json:"completed"`
}

// CohortCompletion 小组整体完成情况
type CohortCompletion struct {
	Students       []CompletionStatus `json:"students"`
	Required       int                `json:"required_reviews"`
	CompletedCount int                `json:"completed_count"`
	AllCompleted   bool               `json:"all_completed"`
}

// RequiredReviews 每个学生需要评价的人数：组内其他所有成员
func RequiredReviews(cohortSize int) int {
	if cohortSize <= 1 {
		return 0
	}
	return cohortSize - 1
}

// TrackCompletion 统计小组内每个学生的互评与自评完成情况
// members 的顺序即输出顺序；不在组内的评价对象不计数
func TrackCompletion(members []string, reviews []Review, selfAssessed map[string]bool) CohortCompletion {
	inCohort := memberSet(members)

	given := make(map[string]map[string]struct{}, len(members))
	for _, r := range reviews {
		if _, ok := inCohort[r.ReviewerID]; !ok {
			continue
		}
		if _, ok := inCohort[r.RevieweeID]; !ok || r.RevieweeID == r.ReviewerID {
			continue
		}
		if given[r.ReviewerID] == nil {
			given[r.ReviewerID] = make(map[string]struct{})
		}
		given[r.ReviewerID][r.RevieweeID] = struct{}{}
	}

	required := RequiredReviews(len(members))
	out := CohortCompletion{
		Students: make([]CompletionStatus, 0, len(members)),
		Required: required,
	}
	for _, id := range members {
		st := CompletionStatus{
			StudentID:         id,
			ReviewsGiven:      len(given[id]),
			HasSelfAssessment: selfAssessed[id],
		}
		st.Completed = st.ReviewsGiven >= required && st.HasSelfAssessment
		if st.Completed {
			out.CompletedCount++
		}
		out.Students = append(out.Students, st)
	}
	// 空小组不视为已完成
	out.AllCompleted = len(members) > 0 && out.CompletedCount == len(members)
	return out
}

func memberSet(members []string) map[string]struct{} {
	set := make(map[string]struct{}, len(members))
	for _, id := range members {
		set[id] = struct{}{}
	}
	return set
}
