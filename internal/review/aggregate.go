package review

import (
	"math"
	"strings"
)

// Viewer 查看结果的人
type Viewer struct {
	ID         string
	IsLecturer bool
}

// CanSeeCommentsOf 只有本人和教师能看到某个学生收到的评语
func (v Viewer) CanSeeCommentsOf(studentID string) bool {
	return v.IsLecturer || (v.ID != "" && v.ID == studentID)
}

// Comment 可见的评语
type Comment struct {
	ReviewerID string `json:"reviewer_id"`
	Text       string `json:"comment"`
}

// Result 单个学生的汇总结果
// Average 保留原始精度供成绩合成使用，展示时调用 DisplayAverage
type Result struct {
	StudentID   string
	Average     float64
	ReviewCount int
	Comments    []Comment
}

// DisplayAverage 保留两位小数的平均分
func (r Result) DisplayAverage() float64 {
	return Round2(r.Average)
}

// Aggregate 汇总小组每个学生收到的互评
// 小组未全部完成时返回 ErrNotReady，不输出任何部分结果
func Aggregate(members []string, reviews []Review, completion CohortCompletion, viewer Viewer) ([]Result, error) {
	if !completion.AllCompleted {
		return nil, ErrNotReady
	}

	inCohort := memberSet(members)
	sums := make(map[string]int, len(members))
	counts := make(map[string]int, len(members))
	comments := make(map[string][]Comment, len(members))

	for _, r := range reviews {
		if _, ok := inCohort[r.ReviewerID]; !ok {
			continue
		}
		if _, ok := inCohort[r.RevieweeID]; !ok || r.RevieweeID == r.ReviewerID {
			continue
		}
		sums[r.RevieweeID] += r.Score
		counts[r.RevieweeID]++
		if text := strings.TrimSpace(r.Comment); text != "" && viewer.CanSeeCommentsOf(r.RevieweeID) {
			comments[r.RevieweeID] = append(comments[r.RevieweeID], Comment{ReviewerID: r.ReviewerID, Text: text})
		}
	}

	results := make([]Result, 0, len(members))
	for _, id := range members {
		res := Result{StudentID: id, ReviewCount: counts[id], Comments: comments[id]}
		// 无人评价时平均分记为 0
		if counts[id] > 0 {
			res.Average = float64(sums[id]) / float64(counts[id])
		}
		if res.Comments == nil {
			res.Comments = []Comment{}
		}
		results = append(results, res)
	}
	return results, nil
}

// CohortMean 小组所有学生平均分的均值
func CohortMean(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var total float64
	for _, r := range results {
		total += r.Average
	}
	return total / float64(len(results))
}

// Round2 四舍五入保留两位小数
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
