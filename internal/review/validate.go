package review

import (
	"strconv"
	"strings"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Entry 提交中针对一名组员的评价
type Entry struct {
	RevieweeID string
	Score      int
	Comment    string
}

// ZipEntries 将表单中的并列数组（reviewee[]、score[]、comment[]）组合为评价列表
// 三个数组长度必须一致，空评语以空字符串占位
func ZipEntries(reviewees, scores, comments []string) ([]Entry, error) {
	if len(reviewees) != len(scores) {
		return nil, invalid("score", "评价对象数量（%d）与分数数量（%d）不一致", len(reviewees), len(scores))
	}
	if len(comments) != len(reviewees) {
		return nil, invalid("comment", "评价对象数量（%d）与评语数量（%d）不一致", len(reviewees), len(comments))
	}

	entries := make([]Entry, 0, len(reviewees))
	for i := range reviewees {
		score, err := strconv.Atoi(strings.TrimSpace(scores[i]))
		if err != nil {
			return nil, invalid("score", "第 %d 个分数不是整数", i+1)
		}
		entries = append(entries, Entry{
			RevieweeID: strings.TrimSpace(reviewees[i]),
			Score:      score,
			Comment:    comments[i],
		})
	}
	return entries, nil
}

// ValidateSubmission 校验一次完整的互评提交
// 必须恰好评价组内其他所有成员，不接受部分提交
func ValidateSubmission(reviewerID string, members []string, entries []Entry) error {
	inCohort := memberSet(members)
	if _, ok := inCohort[reviewerID]; !ok {
		return invalid("reviewer", "提交人不属于该小组")
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Score < MinScore || e.Score > MaxScore {
			return invalid("score", "分数必须在 %d 到 %d 之间", MinScore, MaxScore)
		}
		if e.RevieweeID == reviewerID {
			return invalid("reviewee", "不能评价自己")
		}
		if _, ok := inCohort[e.RevieweeID]; !ok {
			return invalid("reviewee", "评价对象 %s 不在本小组", e.RevieweeID)
		}
		if _, dup := seen[e.RevieweeID]; dup {
			return invalid("reviewee", "重复评价同一组员 %s", e.RevieweeID)
		}
		seen[e.RevieweeID] = struct{}{}
	}

	if required := RequiredReviews(len(members)); len(seen) != required {
		return invalid("reviews", "需要评价全部 %d 名组员，实际 %d 名", required, len(seen))
	}
	return nil
}

// SelfAssessmentInput 自评内容
type SelfAssessmentInput struct {
	Summary    string
	Challenges string
	Different  string
	Role       string
	Feedback   string
}

// ValidateSelfAssessment 四个必填项不能为空
func ValidateSelfAssessment(in SelfAssessmentInput) error {
	required := []struct{ field, value string }{
		{"summary", in.Summary},
		{"challenges", in.Challenges},
		{"different", in.Different},
		{"role", in.Role},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, "不能为空")
		}
	}
	return nil
}
